package actor

import "fmt"

// Kind 消息类型标识，作为 handler 的分发键
type Kind string

const (
	KindMessage Kind = "message"
	KindQuery   Kind = "query"
	KindStop    Kind = "stop"
)

type (
	// IMessage actor 之间传递的消息
	IMessage interface {
		Kind() Kind
		GetPayload() interface{}
	}

	// IQuery 需要回复的消息
	IQuery interface {
		IMessage
		Result() *Result
		bindResult() *Result
	}
)

// Message 普通消息，业务消息通过嵌入 Message 并覆盖 Kind 定义
//
//	type UpdateMessage struct{ actor.Message }
//	func (*UpdateMessage) Kind() actor.Kind { return "update" }
type Message struct {
	Payload interface{}
}

func NewMessage(payload interface{}) *Message {
	return &Message{Payload: payload}
}

func (m *Message) Kind() Kind { return KindMessage }

func (m *Message) GetPayload() interface{} {
	if m == nil {
		return nil
	}
	return m.Payload
}

func (m *Message) String() string {
	return fmt.Sprintf("Message (Payload: %v)", m.GetPayload())
}

// QueryMessage 请求消息，result 在 Ask 时按需创建
type QueryMessage struct {
	Message
	result *Result
}

func NewQueryMessage(payload interface{}) *QueryMessage {
	return &QueryMessage{Message: Message{Payload: payload}}
}

func (m *QueryMessage) Kind() Kind { return KindQuery }

// WithResult 预先绑定结果通道
func (m *QueryMessage) WithResult(r *Result) *QueryMessage {
	m.result = r
	return m
}

// Result 返回已绑定的结果，未绑定时为 nil
func (m *QueryMessage) Result() *Result {
	return m.result
}

func (m *QueryMessage) bindResult() *Result {
	if m.result == nil {
		m.result = NewResult()
	}
	return m.result
}

func (m *QueryMessage) String() string {
	return fmt.Sprintf("QueryMessage (Payload: %v)", m.GetPayload())
}

// StopMessage 毒丸消息，任何状态下都允许投递
type StopMessage struct{}

func (*StopMessage) Kind() Kind { return KindStop }

func (*StopMessage) GetPayload() interface{} { return nil }

func (*StopMessage) String() string { return "StopMessage (Payload: <nil>)" }

func isStop(msg IMessage) bool {
	_, ok := msg.(*StopMessage)
	return ok
}
