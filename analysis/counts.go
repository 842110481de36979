package analysis

// TileCounts counts cells by cell name
func TileCounts(g *Grid) map[string]int {
	counts := make(map[string]int)
	for i := range g.Cells {
		counts[g.Cells[i].Name]++
	}
	return counts
}

// ItemCounts counts items lying on the map by name
func ItemCounts(g *Grid) map[string]int {
	counts := make(map[string]int)
	for i := range g.Cells {
		if item := g.Cells[i].Item; item != nil {
			counts[item.Name]++
		}
	}
	return counts
}

// Groups partitions the cells for which key reports ok into 4-connected
// components of equal key. Every matching cell lands in exactly one group.
func Groups(g *Grid, key func(*Cell) (string, bool)) [][]*Cell {
	visited := make([]bool, len(g.Cells))
	var groups [][]*Cell

	for seed := range g.Cells {
		if visited[seed] {
			continue
		}
		want, ok := key(&g.Cells[seed])
		if !ok {
			continue
		}

		visited[seed] = true
		group := []*Cell{}
		work := []int{seed}
		for len(work) > 0 {
			i := work[len(work)-1]
			work = work[:len(work)-1]
			group = append(group, &g.Cells[i])

			for _, n := range g.Neighbors4(g.Cells[i].Point) {
				j := n.X + n.Y*g.Width
				if visited[j] {
					continue
				}
				if k, ok := key(&g.Cells[j]); ok && k == want {
					visited[j] = true
					work = append(work, j)
				}
			}
		}
		groups = append(groups, group)
	}
	return groups
}

func propName(c *Cell) (string, bool) {
	if c.Prop == nil {
		return "", false
	}
	return c.Prop.Name, true
}

// PropGroups groups adjacent cells holding the same prop into machines
func PropGroups(g *Grid) [][]*Cell {
	return Groups(g, propName)
}

// PropCounts counts machines by prop name, each contiguous group once
func PropCounts(g *Grid) map[string]int {
	counts := make(map[string]int)
	for _, group := range PropGroups(g) {
		counts[group[0].Prop.Name]++
	}
	return counts
}
