// Package pstree renders the process tree under a given pid. Shown when lock
// acquisition fails, so the operator can see what the blocking holder is
// actually doing.
package pstree

import (
	"fmt"
	"io"
	"sort"

	ps "github.com/mitchellh/go-ps"
)

// Render writes the process tree rooted at pid to w, one process per line,
// indented by depth.
func Render(w io.Writer, pid int) error {
	procs, err := ps.Processes()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	byParent := make(map[int][]ps.Process)
	var root ps.Process
	for _, p := range procs {
		if p.Pid() == pid {
			root = p
		}
		byParent[p.PPid()] = append(byParent[p.PPid()], p)
	}
	if root == nil {
		return fmt.Errorf("process %d not found", pid)
	}
	for _, children := range byParent {
		sort.Slice(children, func(i, j int) bool { return children[i].Pid() < children[j].Pid() })
	}

	render(w, root, byParent, 0)
	return nil
}

func render(w io.Writer, p ps.Process, byParent map[int][]ps.Process, depth int) {
	for i := 0; i < depth; i++ {
		fmt.Fprint(w, "  ")
	}
	fmt.Fprintf(w, "%d %s\n", p.Pid(), p.Executable())
	for _, child := range byParent[p.Pid()] {
		render(w, child, byParent, depth+1)
	}
}
