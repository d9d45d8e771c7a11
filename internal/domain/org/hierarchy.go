package org

// Index maps a manager id to its direct subordinates in input order.
// It is derived mechanically and never fails, even for a broken set.
type Index struct {
	subordinates map[string][]Employee
	managers     []string
}

func BuildIndex(set *EmployeeSet) *Index {
	idx := &Index{subordinates: make(map[string][]Employee)}
	for _, emp := range set.Employees() {
		if emp.IsRoot() {
			continue
		}
		if _, seen := idx.subordinates[emp.ManagerID]; !seen {
			idx.managers = append(idx.managers, emp.ManagerID)
		}
		idx.subordinates[emp.ManagerID] = append(idx.subordinates[emp.ManagerID], emp)
	}
	return idx
}

func (idx *Index) Subordinates(managerID string) []Employee {
	subs := idx.subordinates[managerID]
	if len(subs) == 0 {
		return nil
	}
	out := make([]Employee, len(subs))
	copy(out, subs)
	return out
}

func (idx *Index) HasSubordinates(managerID string) bool {
	return len(idx.subordinates[managerID]) > 0
}

// Managers returns every referenced manager id, including ids that do not exist in the set.
func (idx *Index) Managers() []string {
	out := make([]string, len(idx.managers))
	copy(out, idx.managers)
	return out
}

// Reachable returns the ids reachable from rootID by following manager to subordinate edges.
func (idx *Index) Reachable(rootID string) map[string]struct{} {
	reached := map[string]struct{}{rootID: {}}
	queue := []string{rootID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, sub := range idx.subordinates[current] {
			if _, ok := reached[sub.ID]; ok {
				continue
			}
			reached[sub.ID] = struct{}{}
			queue = append(queue, sub.ID)
		}
	}
	return reached
}

type chainEnd int

const (
	chainRoot chainEnd = iota
	chainMissing
	chainCycle
	chainLimit
)

type chainWalk struct {
	Steps int
	End   chainEnd
	// At is the manager id the walk stopped on for chainMissing and chainCycle.
	At string
}

// walkChain follows ManagerID upward from start. Steps counts managers visited,
// so a direct report of the root finishes with Steps == 1. maxSteps <= 0 means unbounded.
func walkChain(set *EmployeeSet, start Employee, maxSteps int) chainWalk {
	visited := map[string]struct{}{start.ID: {}}
	walk := chainWalk{}
	current := start.ManagerID
	for {
		if current == "" {
			walk.End = chainRoot
			return walk
		}
		if maxSteps > 0 && walk.Steps >= maxSteps {
			walk.End = chainLimit
			walk.At = current
			return walk
		}
		if _, seen := visited[current]; seen {
			walk.End = chainCycle
			walk.At = current
			return walk
		}
		manager, ok := set.Get(current)
		if !ok {
			walk.End = chainMissing
			walk.At = current
			return walk
		}
		visited[current] = struct{}{}
		walk.Steps++
		current = manager.ManagerID
	}
}
