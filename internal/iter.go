package internal

import (
	"iter"
)

// IterSeqConcat yields each sequence in turn.
func IterSeqConcat[T any](seqs ...iter.Seq[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, seq := range seqs {
			for val := range seq {
				if !yield(val) {
					return
				}
			}
		}
	}
}

// IterSeq2Concat yields each key/value sequence in turn. Later sequences
// win when collected into a map.
func IterSeq2Concat[K any, V any](seqs ...iter.Seq2[K, V]) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, seq := range seqs {
			for key, val := range seq {
				if !yield(key, val) {
					return
				}
			}
		}
	}
}

// IterSeqFlatMap yields the sequence fn returns for each value of seq.
func IterSeqFlatMap[T any, U any](seq iter.Seq[T], fn func(T) iter.Seq[U]) iter.Seq[U] {
	return func(yield func(U) bool) {
		for val := range seq {
			for out := range fn(val) {
				if !yield(out) {
					return
				}
			}
		}
	}
}
