// Package actor 进程内的 actor 模型实现
//
// 每个 actor 拥有一个 FIFO 邮箱和一张按消息类型（Kind）索引的 handler 表，
// 消息循环一次只处理一条消息，actor 之间只通过消息通信。
//
// 创建与启动：
//
//	a := actor.New(actor.NewGoroutineDispatcher(), actor.WithMaxInboxSize(1024))
//	_ = a.RegisterHandler("get", func(ctx actor.IContext, msg actor.IMessage) (interface{}, error) {
//		return state, nil
//	})
//	_ = a.Start()
//	defer a.Stop()
//
// 发送：
//
//   - [Tell] 单向发送，handler 的错误只会被记录
//   - [Ask] 发送 query 消息并等待回复，handler 的错误返回给调用方
//   - [AskAs] 带类型的 Ask
//
// 停止：[BaseActor.Stop] 投递 StopMessage（任何状态下都允许投递），
// 等待停止前已入队的消息处理完毕后返回。之后的普通消息返回 [ErrActorStopped]。
//
// 没有注册 handler 的消息类型属于配置错误，消息循环会终止，
// 错误通过 [BaseActor.Err]、Stop 的返回值以及 [WithFaultHandler] 上报。
package actor
