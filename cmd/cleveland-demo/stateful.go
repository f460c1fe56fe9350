package main

import (
	"github.com/dzm2020/cleveland"
	"github.com/dzm2020/cleveland/pkg/actor"
)

const (
	KindUpdate actor.Kind = "update"
	KindGet    actor.Kind = "get"
)

// UpdateMessage 替换状态
type UpdateMessage struct {
	actor.Message
}

func NewUpdateMessage(state []int) *UpdateMessage {
	return &UpdateMessage{Message: actor.Message{Payload: state}}
}

func (*UpdateMessage) Kind() actor.Kind { return KindUpdate }

// GetMessage 读取当前状态
type GetMessage struct {
	actor.QueryMessage
}

func NewGetMessage() *GetMessage {
	return &GetMessage{}
}

func (*GetMessage) Kind() actor.Kind { return KindGet }

// StatefulActor 持有一份状态，只在自己的消息循环中读写
type StatefulActor struct {
	*actor.BaseActor
	state []int
}

func NewStatefulActor(rt *cleveland.Runtime, initial []int) (*StatefulActor, error) {
	s := &StatefulActor{
		BaseActor: rt.NewActor(),
		state:     initial,
	}
	if err := s.RegisterHandler(KindUpdate, s.onUpdate); err != nil {
		return nil, err
	}
	if err := s.RegisterHandler(KindGet, s.onGet); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *StatefulActor) onUpdate(_ actor.IContext, msg actor.IMessage) (interface{}, error) {
	if state, ok := msg.GetPayload().([]int); ok {
		s.state = state
	}
	return nil, nil
}

func (s *StatefulActor) onGet(_ actor.IContext, _ actor.IMessage) (interface{}, error) {
	return s.state, nil
}
