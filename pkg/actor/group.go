package actor

import (
	"sync"

	"github.com/duke-git/lancet/v2/maputil"
	"go.uber.org/multierr"
	"golang.org/x/exp/slices"
)

// Group 一起创建、一起关闭的一组 actor，不提供按名字查找
type Group struct {
	members *maputil.ConcurrentMap[uint64, IActor]
	order   []uint64 // 加入顺序
	orderMu sync.Mutex
	// faults 已经因致命错误退出的成员，由下一次 StopAll 返回
	faults map[uint64]error
}

func NewGroup() *Group {
	return &Group{
		members: maputil.NewConcurrentMap[uint64, IActor](16),
	}
}

// Add 加入 group，actor 退出后自动移除
func (g *Group) Add(a IActor) {
	if a == nil {
		return
	}
	if _, loaded := g.members.GetOrSet(a.ID(), a); loaded {
		return
	}
	g.orderMu.Lock()
	g.order = append(g.order, a.ID())
	g.orderMu.Unlock()

	go func() {
		<-a.Done()
		if err := a.Err(); err != nil {
			g.orderMu.Lock()
			if g.faults == nil {
				g.faults = make(map[uint64]error)
			}
			g.faults[a.ID()] = err
			g.orderMu.Unlock()
		}
		g.Remove(a.ID())
	}()
}

func (g *Group) Remove(id uint64) {
	g.members.Delete(id)
	g.orderMu.Lock()
	defer g.orderMu.Unlock()
	if index := slices.Index(g.order, id); index >= 0 {
		g.order = slices.Delete(g.order, index, index+1)
	}
}

func (g *Group) Len() int {
	g.orderMu.Lock()
	defer g.orderMu.Unlock()
	return len(g.order)
}

// Members 按加入顺序返回当前成员
func (g *Group) Members() []IActor {
	g.orderMu.Lock()
	ids := slices.Clone(g.order)
	g.orderMu.Unlock()

	list := make([]IActor, 0, len(ids))
	for _, id := range ids {
		if a, ok := g.members.Get(id); ok {
			list = append(list, a)
		}
	}
	return list
}

// StopAll 按加入顺序的逆序依次停止，返回所有成员的停止结果
// 在此之前已经异常退出的成员，其错误同样包含在返回值中
func (g *Group) StopAll() error {
	members := g.Members()
	slices.Reverse(members)
	var err error
	stopped := make(map[uint64]struct{}, len(members))
	for _, a := range members {
		stopped[a.ID()] = struct{}{}
		err = multierr.Append(err, a.Stop())
	}

	g.orderMu.Lock()
	faults := g.faults
	g.faults = nil
	g.orderMu.Unlock()
	ids := make([]uint64, 0, len(faults))
	for id := range faults {
		if _, ok := stopped[id]; !ok {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	for _, id := range ids {
		err = multierr.Append(err, faults[id])
	}
	return err
}
