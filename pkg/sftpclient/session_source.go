package sftpclient

// SessionScope selects how sessions for mutating operations (remove, mkdir,
// upload) are obtained. The per-operation scope trades connection reuse for
// resilience against long-lived sessions going stale between many sequential
// remote calls; the shared scope keeps one session open for the whole run.
type SessionScope string

const (
	ScopePerOperation SessionScope = "per-operation"
	ScopeShared       SessionScope = "shared"
)

// SessionSource hands out sessions according to a SessionScope. Acquire and
// Release bracket one operation; Close releases whatever the source still
// holds.
type SessionSource interface {
	Acquire() (Session, error)
	Release(Session)
	Close() error
}

// NewSessionSource returns the source implementing the given scope.
func NewSessionSource(client Client, scope SessionScope) SessionSource {
	if scope == ScopeShared {
		return &sharedSource{client: client}
	}
	return &perOperationSource{client: client}
}

type perOperationSource struct {
	client Client
}

func (s *perOperationSource) Acquire() (Session, error) {
	return s.client.OpenSession()
}

func (s *perOperationSource) Release(sess Session) {
	sess.Close()
}

func (s *perOperationSource) Close() error {
	return nil
}

type sharedSource struct {
	client Client
	sess   Session
}

func (s *sharedSource) Acquire() (Session, error) {
	if s.sess != nil {
		return s.sess, nil
	}
	sess, err := s.client.OpenSession()
	if err != nil {
		return nil, err
	}
	s.sess = sess
	return sess, nil
}

func (s *sharedSource) Release(Session) {}

func (s *sharedSource) Close() error {
	if s.sess == nil {
		return nil
	}
	err := s.sess.Close()
	s.sess = nil
	return err
}
