package domain

import (
	"strconv"
	"sync"
)

// TargetSlot は生成した作品を受け取る表示先の契約なのだ。
// 1回の実行で各スロットに割り当てられるのは高々1回です。
type TargetSlot interface {
	ID() string
	SetTitle(title string)
	SetDescription(description string)
	SetArtwork(image []byte)
}

// MemorySlot はメモリ上に割り当て結果を保持する TargetSlot の実装です。
type MemorySlot struct {
	id string

	mu          sync.RWMutex
	title       string
	description string
	artwork     []byte
	assigned    bool
}

// NewMemorySlot は指定IDの空スロットを作成します。
func NewMemorySlot(id string) *MemorySlot {
	return &MemorySlot{id: id}
}

func (s *MemorySlot) ID() string { return s.id }

func (s *MemorySlot) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.title = title
}

func (s *MemorySlot) SetDescription(description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.description = description
}

func (s *MemorySlot) SetArtwork(image []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artwork = image
	s.assigned = true
}

// Title は割り当て済みのタイトルを返します。
func (s *MemorySlot) Title() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.title
}

// Description は割り当て済みの説明文を返します。
func (s *MemorySlot) Description() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.description
}

// Artwork は割り当て済みの画像データを返します。
func (s *MemorySlot) Artwork() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.artwork
}

// Assigned は画像が割り当て済みかどうかを返します。
func (s *MemorySlot) Assigned() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.assigned
}

// NewMemorySlots は "<prefix>_1" から順に n 個のスロットを作るヘルパーなのだ。
func NewMemorySlots(prefix string, n int) []*MemorySlot {
	slots := make([]*MemorySlot, 0, n)
	for i := range n {
		slots = append(slots, NewMemorySlot(prefix+"_"+strconv.Itoa(i+1)))
	}
	return slots
}

// AsTargetSlots は MemorySlot のスライスを TargetSlot のスライスに変換します。
func AsTargetSlots(slots []*MemorySlot) []TargetSlot {
	out := make([]TargetSlot, len(slots))
	for i, s := range slots {
		out[i] = s
	}
	return out
}
