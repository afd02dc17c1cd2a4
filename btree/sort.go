package btree

// Sort rearranges the subtree rooted at n into ascending order according to
// less, which may return an error (a user-supplied comparator is allowed
// to fail or re-enter the library per spec §6). It flattens the subtree to
// a scratch slice, runs a stable gallop/merge sort over the slice, then
// rebuilds a tree from the sorted result via Forest — so the sort itself
// never mutates shared node structure in place and a re-entrant comparator
// cannot observe a partially rebalanced tree.
//
// Grounded directly on blist.c's gallop_sort / mini_merge / binary_sort /
// reverse_slice, translated from the in-place array algorithm to a
// flatten/sort/rebuild pipeline because Go generics give us no equivalent
// of the C array swap tricks blist.c relies on, and the tree engine already
// has a bulk rebuild primitive (Forest) that a naive in-place version would
// have had to reinvent.
func Sort[T any](n node[T], cfg Config[T], less func(a, b T) (bool, error)) (node[T], error) {
	flat := getSlice(n, 0, countOf[T](n), make([]T, 0, countOf[T](n)))
	if err := gallopSort(flat, less); err != nil {
		return nil, err
	}
	f := NewForest[T](cfg)
	for _, v := range flat {
		f.Append(v)
	}
	return f.Finish(), nil
}

// gallopSort stably sorts data in place. It scans for naturally occurring
// ascending or descending runs; descending runs are reversed in place
// (stable, since no two equal elements can appear in a strictly descending
// run), runs shorter than RunThresh are extended via binary insertion, and
// the resulting runs are repeatedly pairwise-merged until one remains.
func gallopSort[T any](data []T, less func(a, b T) (bool, error)) error {
	n := len(data)
	if n < 2 {
		return nil
	}

	var runs [][2]int
	i := 0
	for i < n {
		runEnd, err := extendRun(data, i, less)
		if err != nil {
			return err
		}
		if runEnd-i < RunThresh {
			target := i + RunThresh
			if target > n {
				target = n
			}
			if err := binaryInsertionSort(data, i, target, runEnd, less); err != nil {
				return err
			}
			runEnd = target
		}
		runs = append(runs, [2]int{i, runEnd})
		i = runEnd
	}

	scratch := make([]T, n)
	for len(runs) > 1 {
		var next [][2]int
		for j := 0; j+1 < len(runs); j += 2 {
			lo, mid, hi := runs[j][0], runs[j][1], runs[j+1][1]
			if err := miniMerge(data, scratch, lo, mid, hi, less); err != nil {
				return err
			}
			next = append(next, [2]int{lo, hi})
		}
		if len(runs)%2 == 1 {
			next = append(next, runs[len(runs)-1])
		}
		runs = next
	}
	return nil
}

// extendRun finds the end (exclusive) of the run starting at i: a maximal
// ascending (less[k] !> less[k+1] is false, i.e. non-descending) or a
// maximal strictly descending run, reversing a descending run in place
// before returning so every run in the caller's list is ascending.
func extendRun[T any](data []T, i int, less func(a, b T) (bool, error)) (int, error) {
	n := len(data)
	if i+1 == n {
		return n, nil
	}
	j := i + 1
	lt, err := less(data[j], data[j-1])
	if err != nil {
		return 0, err
	}
	if lt {
		// Strictly descending run.
		for j+1 < n {
			lt2, err := less(data[j+1], data[j])
			if err != nil {
				return 0, err
			}
			if !lt2 {
				break
			}
			j++
		}
		reverseSlice(data[i : j+1])
		return j + 1, nil
	}
	// Non-descending run.
	for j+1 < n {
		lt2, err := less(data[j+1], data[j])
		if err != nil {
			return 0, err
		}
		if lt2 {
			break
		}
		j++
	}
	return j + 1, nil
}

func reverseSlice[T any](s []T) {
	for a, b := 0, len(s)-1; a < b; a, b = a+1, b-1 {
		s[a], s[b] = s[b], s[a]
	}
}

// binaryInsertionSort extends an already-sorted prefix data[lo:mid) to
// cover data[lo:hi) by binary-inserting each of data[mid:hi) in turn.
func binaryInsertionSort[T any](data []T, lo, hi, mid int, less func(a, b T) (bool, error)) error {
	if mid == lo {
		mid = lo + 1
	}
	for ; mid < hi; mid++ {
		pivot := data[mid]
		left, right := lo, mid
		for left < right {
			m := (left + right) / 2
			lt, err := less(pivot, data[m])
			if err != nil {
				return err
			}
			if lt {
				right = m
			} else {
				left = m + 1
			}
		}
		copy(data[left+1:mid+1], data[left:mid])
		data[left] = pivot
	}
	return nil
}

// miniMerge stably merges the two adjacent sorted runs data[lo:mid) and
// data[mid:hi) using scratch as working space, grounded on blist.c's
// mini_merge (which uses a fixed LIMIT-sized copy buffer for the same
// purpose; scratch here is sized to the whole sort for simplicity since Go
// slices make that cheap).
func miniMerge[T any](data, scratch []T, lo, mid, hi int, less func(a, b T) (bool, error)) error {
	n := mid - lo
	left := scratch[:n]
	copy(left, data[lo:mid])
	i, j, k := 0, mid, lo
	for i < len(left) && j < hi {
		lt, err := less(data[j], left[i])
		if err != nil {
			return err
		}
		if lt {
			data[k] = data[j]
			j++
		} else {
			data[k] = left[i]
			i++
		}
		k++
	}
	for i < len(left) {
		data[k] = left[i]
		i++
		k++
	}
	return nil
}
