package framework

import "sync"

// TestLogger receives notifications about the progress of each test. Calls for a single suite
// arrive in program order.
type TestLogger interface {
	TestStarted(id TestID)
	TestError(id TestID, err error)
	TestFinished(id TestID, failed bool, debugOutput CapturedOutput)
	TestSkipped(id TestID, reason string)
}

type nullTestLogger struct{}

func (n nullTestLogger) TestStarted(TestID)                        {}
func (n nullTestLogger) TestError(TestID, error)                   {}
func (n nullTestLogger) TestFinished(TestID, bool, CapturedOutput) {}
func (n nullTestLogger) TestSkipped(TestID, string)                {}

type synchronizedTestLogger struct {
	target TestLogger
	lock   *sync.Mutex
}

// SynchronizedTestLogger wraps a TestLogger so that it can be shared by suites running on
// separate goroutines. Each notification is delivered while holding a single lock.
func SynchronizedTestLogger(target TestLogger) TestLogger {
	if target == nil {
		target = nullTestLogger{}
	}
	return synchronizedTestLogger{target: target, lock: &sync.Mutex{}}
}

func (s synchronizedTestLogger) TestStarted(id TestID) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.target.TestStarted(id)
}

func (s synchronizedTestLogger) TestError(id TestID, err error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.target.TestError(id, err)
}

func (s synchronizedTestLogger) TestFinished(id TestID, failed bool, debugOutput CapturedOutput) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.target.TestFinished(id, failed, debugOutput)
}

func (s synchronizedTestLogger) TestSkipped(id TestID, reason string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.target.TestSkipped(id, reason)
}
