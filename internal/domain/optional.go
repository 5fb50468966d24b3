package domain

// Optional различает «значение не передано» и «передано, в том числе пустое».
// Нулевое значение Optional означает «не передано».
type Optional[T any] struct {
	value T
	set   bool
}

// Some возвращает заданное значение.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// None возвращает незаданное значение.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

func (o Optional[T]) IsSet() bool { return o.set }

// Get возвращает значение и признак того, что оно было передано.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// OrElse возвращает значение или fallback, если оно не передано.
func (o Optional[T]) OrElse(fallback T) T {
	if !o.set {
		return fallback
	}
	return o.value
}
