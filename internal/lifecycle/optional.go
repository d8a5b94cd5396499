package lifecycle

// Optional - значение поля в патче. Set=false: поле не прислано,
// Set && Null: прислан явный null.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// Present - прислано непустое значение.
func (o Optional[T]) Present() bool {
	return o.Set && !o.Null
}
