package interp

import brilerrors "bril/internal/errors"

// Heap is a semispace copying collector over a flat Value array: the
// backing array is split into two equal halves, one "from" (inactive) and
// one "to" (active, where allocation bumps a pointer forward). size_map
// records each live allocation's length so the collector can copy it
// whole during a GC cycle.
type Heap struct {
	memory    []Value
	sizeMap   map[int]int64
	basePtr   int
	isTop     bool
	gcLimit   int64
	heapSize  int64
	growth    int64
}

// NewHeap allocates a heap of the given total size (split into two equal
// halves) with the given initial GC trigger limit and growth factor —
// these three are runtime parameters (see internal/config) rather than
// the hardcoded constants of the original interpreter, so tests can force
// a small heap to exercise collection deterministically.
func NewHeap(heapSize, initialGCLimit, growthFactor int64) *Heap {
	return &Heap{
		memory:   make([]Value, heapSize),
		sizeMap:  map[int]int64{},
		basePtr:  0,
		isTop:    true,
		gcLimit:  initialGCLimit,
		heapSize: heapSize,
		growth:   growthFactor,
	}
}

func (h *Heap) shouldRunGC(amount int64) bool {
	if amount+h.allocatedSize() >= h.gcLimit {
		h.gcLimit *= h.growth
		return true
	}
	return false
}

func (h *Heap) flip() {
	if h.isTop {
		h.basePtr = int(h.heapSize / 2)
	} else {
		h.basePtr = 0
	}
	h.isTop = !h.isTop
}

func (h *Heap) clear() {
	half := h.heapSize / 2
	if h.isTop {
		for i := half; i < h.heapSize; i++ {
			h.memory[i] = Value{}
		}
	} else {
		for i := int64(0); i < half; i++ {
			h.memory[i] = Value{}
		}
	}
}

// processField copies the allocation a pointer field references into the
// new semispace exactly once: sizeMap.remove acts as a single-use ticket,
// so a second root reaching the same object after its ticket is consumed
// sees no entry and is left unprocessed here — a known, spec-acknowledged
// double-copy hazard, not one this implementation silently papers over.
func (h *Heap) processField(v Value) (Value, bool) {
	if v.kind != kindPointer {
		return Value{}, false
	}
	size, ok := h.sizeMap[v.ptr.Base]
	if !ok {
		return Value{}, false
	}
	delete(h.sizeMap, v.ptr.Base)
	to, err := h.alloc(size)
	if err != nil {
		panic(err)
	}
	for i := int64(0); i < size; i++ {
		h.memory[int(i)+to.Base] = h.memory[int(i)+v.ptr.Base]
	}
	h.sizeMap[to.Base] = size
	return ptrValue(Pointer{Base: to.Base, Offset: v.ptr.Offset}), true
}

// gc runs one semispace collection: flip active halves, scan every root
// (every scope slot in value_store), then breadth-first scan the copied
// objects in the new semispace forwarding any pointers they themselves
// contain, and finally zero the now-inactive half.
func (h *Heap) gc(env *Environment) {
	h.flip()
	scan := h.basePtr
	for i := range env.scopes {
		scope := &env.scopes[i]
		for j := range scope.vars {
			if forwarded, ok := h.processField(scope.vars[j]); ok {
				scope.vars[j] = forwarded
			}
		}
	}
	for scan != h.basePtr {
		size, ok := h.sizeMap[scan]
		if !ok {
			break
		}
		for i := scan; i < scan+int(size); i++ {
			if forwarded, ok := h.processField(h.memory[i]); ok {
				h.memory[i] = forwarded
			}
		}
		scan += int(size)
	}
	h.clear()
}

func (h *Heap) allocatedSize() int64 {
	if h.isTop {
		return int64(h.basePtr)
	}
	return int64(h.basePtr) - h.heapSize/2
}

func (h *Heap) alloc(amount int64) (Pointer, error) {
	if amount < 0 || amount > h.heapSize/2-h.allocatedSize() {
		return Pointer{}, brilerrors.RuntimeError{Code: brilerrors.ErrorCannotAllocSize, Message: "heap allocation request could not be satisfied"}
	}
	base := h.basePtr
	h.sizeMap[base] = amount
	h.basePtr += int(amount)
	return Pointer{Base: base, Offset: 0}, nil
}

// free always fails: this interpreter implements the tracing-GC lesson,
// which never frees explicitly — only the collector reclaims memory.
func (h *Heap) free(Pointer) error {
	panic("interp: free is not supported by the garbage-collected heap")
}

func (h *Heap) write(key Pointer, val Value) error {
	idx := key.Base + int(key.Offset)
	if key.Offset < 0 || idx < 0 || idx >= len(h.memory) {
		return brilerrors.RuntimeError{Code: brilerrors.ErrorInvalidMemoryAccess, Message: "memory write fell outside a pointer's bounds"}
	}
	h.memory[idx] = val
	return nil
}

func (h *Heap) read(key Pointer) (Value, error) {
	idx := key.Base + int(key.Offset)
	if idx < 0 || idx >= len(h.memory) {
		return Value{}, brilerrors.RuntimeError{Code: brilerrors.ErrorInvalidMemoryAccess, Message: "memory read fell outside a pointer's bounds"}
	}
	v := h.memory[idx]
	if v.isUninitialized() {
		return Value{}, brilerrors.RuntimeError{Code: brilerrors.ErrorUsingUninitializedMemory, Message: "memory cell was read before being written"}
	}
	return v, nil
}
