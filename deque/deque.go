/**
 *
 * 双端队列，用于保存模拟过程中的快照
 * 容量固定，满了之后由调用方决定丢弃头部还是尾部
 *
 */

package deque

import "grainsim/model"

type Deque interface {
	// 队列的长度
	Size() int

	// 获取队列中对应下标的快照
	Get(i int) model.Snapshot

	// 正向遍历
	Traverse(f func(i int, item *model.Snapshot))

	// 在队列结尾增加一个元素
	AddLast(item model.Snapshot)

	// 在队列结尾删除一个元素
	RemoveLast() model.Snapshot

	// 在队列头部增加一个元素
	AddFirst(item model.Snapshot)

	// 在队列头部删除一个元素
	RemoveFirst() model.Snapshot

	IsFull() bool

	IsEmpty() bool
}
