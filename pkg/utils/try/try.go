package try

// Fataler is something having method `Fatal`.
//
// For example: *testing.T, *log.Logger
type Fataler interface {
	Fatal(...any)
}

// Either wraps a pair of (T, error).
//
// When error is nil, the Either is "ok" and T value is valid.
// Otherwise T value should not be used.
type Either[T any] interface {
	// Get returns (value, nil) when ok, or (zero-value, error).
	Get() (T, error)

	// OrFatal returns the value when ok. Otherwise, it calls ftl.Fatal(err).
	//
	// If ftl has "Helper()" method (like *testing.T), it is called before `Fatal`.
	OrFatal(ftl Fataler) T

	// OrDefault returns the value when ok, or d.
	OrDefault(d T) T
}

// Map converts value if the Either is ok.
func Map[T any, R any](try Either[T], mapper func(T) R) Either[R] {
	val, err := try.Get()
	if err != nil {
		return tryNg[R]{err}
	}
	return tryOk[R]{mapper(val)}
}

func To[T any](ok T, ng error) Either[T] {
	if ng == nil {
		return tryOk[T]{ok}
	}
	return tryNg[T]{ng}
}

type tryOk[T any] struct {
	value T
}

type tryNg[T any] struct {
	err error
}

func (ok tryOk[T]) Get() (T, error) {
	return ok.value, nil
}

func (ng tryNg[T]) Get() (T, error) {
	return *new(T), ng.err
}

func (ok tryOk[T]) OrDefault(T) T {
	return ok.value
}

func (ng tryNg[T]) OrDefault(d T) T {
	return d
}

func (ok tryOk[T]) OrFatal(Fataler) T {
	return ok.value
}

func (ng tryNg[T]) OrFatal(ftl Fataler) T {
	if hlp, ok := ftl.(interface{ Helper() }); ok {
		hlp.Helper()
	}
	ftl.Fatal(ng.err)

	return *new(T)
}
