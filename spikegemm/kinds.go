package spikegemm

// IsInt8 reports whether type parameter T is int8. The answer depends only
// on the instantiation, so calls are resolved when a GEMM is assembled,
// never inside a compute loop.
func IsInt8[T Element]() bool {
	_, ok := any(*new(T)).(int8)
	return ok
}

// IsFloat32 reports whether type parameter T is float32.
func IsFloat32[T Element]() bool {
	_, ok := any(*new(T)).(float32)
	return ok
}
