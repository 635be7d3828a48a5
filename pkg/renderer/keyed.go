package renderer

import "github.com/vango-dev/reactor/pkg/vdom"

// unmatched marks a new child with no old counterpart.
const unmatched = -1

// patchKeyedChildren reconciles two child arrays by key with as few host
// moves as possible.
func (r *Renderer) patchKeyedChildren(c1, c2 []*vdom.VNode, container, parentAnchor any, parent *Instance) {
	i := 0
	e1 := len(c1) - 1
	e2 := len(c2) - 1

	// 1. Sync from the start.
	for i <= e1 && i <= e2 {
		if !vdom.SameType(c1[i], c2[i]) {
			break
		}
		r.patch(c1[i], c2[i], container, nil, parent)
		i++
	}

	// 2. Sync from the end.
	for i <= e1 && i <= e2 {
		if !vdom.SameType(c1[e1], c2[e2]) {
			break
		}
		r.patch(c1[e1], c2[e2], container, nil, parent)
		e1--
		e2--
	}

	// anchorAfter is the host node new child idx must precede.
	anchorAfter := func(idx int) any {
		if idx+1 < len(c2) {
			return c2[idx+1].El
		}
		return parentAnchor
	}

	switch {
	case i > e1:
		// 3. Only new children remain.
		if i <= e2 {
			anchor := anchorAfter(e2)
			for ; i <= e2; i++ {
				r.patch(nil, c2[i], container, anchor, parent)
			}
		}

	case i > e2:
		// 4. Only old children remain.
		for ; i <= e1; i++ {
			r.unmount(c1[i], true)
		}

	default:
		// 5. Unknown middle range.
		s1, s2 := i, i

		keyToNewIndex := make(map[any]int, e2-s2+1)
		for j := s2; j <= e2; j++ {
			if key := c2[j].Key; key != nil {
				keyToNewIndex[key] = j
			}
		}

		toBePatched := e2 - s2 + 1
		patched := 0
		moved := false
		maxNewIndexSoFar := 0
		newIndexToOldIndex := make([]int, toBePatched)
		for j := range newIndexToOldIndex {
			newIndexToOldIndex[j] = unmatched
		}

		for j := s1; j <= e1; j++ {
			prev := c1[j]
			if patched >= toBePatched {
				// Every new child is matched; the rest are leftovers.
				r.unmount(prev, true)
				continue
			}
			newIndex, ok := unmatched, false
			if prev.Key != nil {
				newIndex, ok = keyToNewIndex[prev.Key]
			}
			if !ok || newIndexToOldIndex[newIndex-s2] != unmatched {
				r.unmount(prev, true)
				continue
			}
			newIndexToOldIndex[newIndex-s2] = j
			if newIndex >= maxNewIndexSoFar {
				maxNewIndexSoFar = newIndex
			} else {
				moved = true
			}
			r.patch(prev, c2[newIndex], container, nil, parent)
			patched++
		}

		var stable []int
		if moved {
			stable = longestIncreasingSubsequence(newIndexToOldIndex)
		}
		s := len(stable) - 1
		// Walk backwards so each anchor is already in its final place.
		for k := toBePatched - 1; k >= 0; k-- {
			idx := s2 + k
			next := c2[idx]
			anchor := anchorAfter(idx)
			switch {
			case newIndexToOldIndex[k] == unmatched:
				r.patch(nil, next, container, anchor, parent)
			case moved:
				if s >= 0 && stable[s] == k {
					s--
				} else {
					r.move(next, container, anchor)
				}
			}
		}
	}
}

// longestIncreasingSubsequence returns the positions in arr of one longest
// strictly increasing subsequence, ignoring unmatched entries.
func longestIncreasingSubsequence(arr []int) []int {
	prev := make([]int, len(arr))
	result := make([]int, 0, len(arr))

	for i, v := range arr {
		if v == unmatched {
			continue
		}
		if n := len(result); n == 0 || arr[result[n-1]] < v {
			if n > 0 {
				prev[i] = result[n-1]
			}
			result = append(result, i)
			continue
		}
		lo, hi := 0, len(result)-1
		for lo < hi {
			mid := (lo + hi) / 2
			if arr[result[mid]] < v {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		if v < arr[result[lo]] {
			if lo > 0 {
				prev[i] = result[lo-1]
			}
			result[lo] = i
		}
	}

	if len(result) == 0 {
		return result
	}
	v := result[len(result)-1]
	for u := len(result) - 1; u >= 0; u-- {
		result[u] = v
		v = prev[v]
	}
	return result
}
