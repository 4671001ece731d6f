package session

// ActiveLocks reports how many lock entries are held in memory.
func ActiveLocks(m *Manager) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}
