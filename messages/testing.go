package messages

import "sync"

// ResponseRecorder is a ResponseSender that keeps every sent message. It is
// meant to test modules without a connection.
type ResponseRecorder struct {
	mutex sync.Mutex
	msgs  []Msg
	errs  []error
}

func (r *ResponseRecorder) Send(msgType string, requestID uint32, data any) {
	msg, err := NewMsg(msgType, requestID, data)

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if err != nil {
		r.errs = append(r.errs, err)
		return
	}
	r.msgs = append(r.msgs, msg)
}

func (r *ResponseRecorder) SendMsg(msg Msg) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.msgs = append(r.msgs, msg)
}

// Msgs returns the recorded messages in sending order.
func (r *ResponseRecorder) Msgs() []Msg {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return append([]Msg(nil), r.msgs...)
}

// Last returns the last recorded message.
func (r *ResponseRecorder) Last() (Msg, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if len(r.msgs) == 0 {
		return Msg{}, false
	}
	return r.msgs[len(r.msgs)-1], true
}

// Errs returns the encoding errors met while sending.
func (r *ResponseRecorder) Errs() []error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return append([]error(nil), r.errs...)
}
