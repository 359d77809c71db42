package quadbench

// Reducer sums term(i) over the index range [lo, hi).
//
// Implementations may evaluate terms concurrently and combine partial sums in
// any order, so term must be safe to call from several goroutines at once and
// results are only reproducible up to floating-point reassociation. Sum blocks
// until every term has been combined. An empty range sums to zero.
type Reducer interface {
	Sum(lo, hi int64, term func(i int64) float64) float64
}

// ReducerFunc adapts an ordinary function to the Reducer interface.
type ReducerFunc func(lo, hi int64, term func(i int64) float64) float64

// Sum calls fn(lo, hi, term).
func (fn ReducerFunc) Sum(lo, hi int64, term func(i int64) float64) float64 {
	return fn(lo, hi, term)
}

// SerialReducer accumulates terms in ascending index order on the calling
// goroutine. It is the single-worker reference for parallel reducers.
var SerialReducer Reducer = ReducerFunc(serialSum)

func serialSum(lo, hi int64, term func(i int64) float64) float64 {
	sum := 0.0
	for i := lo; i < hi; i++ {
		sum += term(i)
	}
	return sum
}
