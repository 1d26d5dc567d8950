package store

import "sync"

// pendingSet сериализует мутации по идентификатору сущности: пока для
// id есть незавершенная мутация, вторая отклоняется с BUSY. Токен
// защищает от применения устаревшего ответа: завершение действует,
// только если токен совпадает с текущим pending-токеном id.
type pendingSet struct {
	mu       sync.Mutex
	inflight map[string]uint64
	seq      uint64
}

func newPendingSet() *pendingSet {
	return &pendingSet{inflight: make(map[string]uint64)}
}

// begin регистрирует мутацию; ok=false — для id уже есть незавершенная
func (p *pendingSet) begin(id string) (token uint64, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, busy := p.inflight[id]; busy {
		return 0, false
	}
	p.seq++
	p.inflight[id] = p.seq
	return p.seq, true
}

// finish снимает pending-отметку; false — ответ устарел и его
// результат применять нельзя
func (p *pendingSet) finish(id string, token uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	current, exists := p.inflight[id]
	if !exists || current != token {
		return false
	}
	delete(p.inflight, id)
	return true
}

// isPending сообщает, выполняется ли мутация для id
func (p *pendingSet) isPending(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, busy := p.inflight[id]
	return busy
}
