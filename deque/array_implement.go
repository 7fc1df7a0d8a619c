package deque

import (
	"grainsim/model"
)

// 环形数组实现，遍历时有更好的局部性
type ArrDeque struct {
	arr []model.Snapshot

	// 头部元素下标
	start int
	// 元素个数
	size int
}

// 工厂方法
func NewArrDeque(capacity int) *ArrDeque {
	if capacity < 1 {
		capacity = 1
	}
	return &ArrDeque{
		arr: make([]model.Snapshot, capacity),
	}
}

func (ad *ArrDeque) Size() int {
	return ad.size
}

func (ad *ArrDeque) Capacity() int {
	return len(ad.arr)
}

func (ad *ArrDeque) index(i int) int {
	return (ad.start + i) % len(ad.arr)
}

func (ad *ArrDeque) Get(i int) model.Snapshot {
	if i < 0 || i >= ad.size {
		panic("index out of length")
	}
	return ad.arr[ad.index(i)]
}

func (ad *ArrDeque) Traverse(f func(i int, item *model.Snapshot)) {
	for i := 0; i < ad.size; i++ {
		f(i, &ad.arr[ad.index(i)])
	}
}

func (ad *ArrDeque) AddLast(item model.Snapshot) {
	if ad.IsFull() {
		panic("deque is full")
	}
	ad.arr[ad.index(ad.size)] = item
	ad.size++
}

func (ad *ArrDeque) RemoveLast() model.Snapshot {
	if ad.IsEmpty() {
		panic("deque is empty")
	}
	ad.size--
	return ad.arr[ad.index(ad.size)]
}

func (ad *ArrDeque) AddFirst(item model.Snapshot) {
	if ad.IsFull() {
		panic("deque is full")
	}
	ad.start = (ad.start - 1 + len(ad.arr)) % len(ad.arr)
	ad.arr[ad.start] = item
	ad.size++
}

func (ad *ArrDeque) RemoveFirst() model.Snapshot {
	if ad.IsEmpty() {
		panic("deque is empty")
	}
	item := ad.arr[ad.start]
	ad.start = (ad.start + 1) % len(ad.arr)
	ad.size--
	return item
}

func (ad *ArrDeque) IsFull() bool {
	return ad.size == len(ad.arr)
}

func (ad *ArrDeque) IsEmpty() bool {
	return ad.size == 0
}

// 转成切片，头部在前
func (ad *ArrDeque) Slice() []model.Snapshot {
	res := make([]model.Snapshot, 0, ad.size)
	ad.Traverse(func(_ int, item *model.Snapshot) {
		res = append(res, *item)
	})
	return res
}

// 满了之后丢弃最旧的元素
func (ad *ArrDeque) Push(item model.Snapshot) {
	if ad.IsFull() {
		ad.RemoveFirst()
	}
	ad.AddLast(item)
}
