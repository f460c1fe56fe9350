package actor

import (
	"context"
	"fmt"
)

// Tell 单向发送，target 必须实现 IReceiver
// 有容量限制的邮箱已满时会阻塞，直到有空位或 ctx 结束
func Tell(ctx context.Context, target interface{}, msg IMessage) error {
	if msg == nil {
		return ErrMessageIsNil
	}
	receiver, ok := target.(IReceiver)
	if !ok || receiver == nil {
		return errTargetType(target)
	}
	return receiver.Receive(ctx, msg)
}

// Ask 发送 query 并等待回复；handler 的错误原样返回给调用方
func Ask(ctx context.Context, target interface{}, msg IMessage) (interface{}, error) {
	if msg == nil {
		return nil, ErrMessageIsNil
	}
	query, ok := msg.(IQuery)
	if !ok {
		return nil, errNotQuery(msg)
	}
	result := query.bindResult()
	if err := Tell(ctx, target, query); err != nil {
		return nil, err
	}
	return result.Wait(ctx)
}

// AskAs 带类型的 Ask，回复为 nil 时返回 T 的零值
func AskAs[T any](ctx context.Context, target interface{}, msg IMessage) (T, error) {
	var zero T
	reply, err := Ask(ctx, target, msg)
	if err != nil {
		return zero, err
	}
	if reply == nil {
		return zero, nil
	}
	v, ok := reply.(T)
	if !ok {
		return zero, errUnexpectedReply(fmt.Sprintf("%T", zero), reply)
	}
	return v, nil
}
