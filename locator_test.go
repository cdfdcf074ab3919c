package locator

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockService struct {
	id uuid.UUID
}

func newMockService() *mockService {
	return &mockService{id: uuid.New()}
}

type anotherMockService struct {
	id uuid.UUID
}

type mockLocatableService struct {
	id          uuid.UUID
	initialized int
}

func (m *mockLocatableService) Init() {
	m.id = uuid.New()
	m.initialized++
}

type greeter interface {
	Greet() string
}

func (m *mockService) Greet() string { return "hello " + m.id.String() }

func TestLocator_InitiallyEmpty(t *testing.T) {
	l := New()
	assert.Empty(t, l.Names())
	assert.Equal(t, 0, l.Len())
}

func TestRegister_StoresUnderTypeName(t *testing.T) {
	l := New()

	key, err := Register(l, newMockService())
	require.NoError(t, err)

	assert.Equal(t, "*github.com/GoCodeAlone/locator.mockService", key)
	assert.Equal(t, []string{key}, l.Names())
	assert.True(t, l.Has(key))
}

func TestGet_ReturnsRegisteredInstance(t *testing.T) {
	l := New()
	svc := newMockService()
	_, err := Register(l, svc)
	require.NoError(t, err)

	located, err := Get[*mockService](l)
	require.NoError(t, err)
	assert.Same(t, svc, located)
}

func TestRegister_DuplicateKeepsOriginal(t *testing.T) {
	l := New()
	original := newMockService()
	_, err := Register(l, original)
	require.NoError(t, err)

	_, err = Register(l, newMockService())
	require.ErrorIs(t, err, ErrDuplicateService)

	key, ok := KeyOf(err)
	require.True(t, ok)
	assert.Equal(t, TypeName[*mockService](), key)

	located, err := Get[*mockService](l)
	require.NoError(t, err)
	assert.Same(t, original, located)
	assert.Len(t, l.Names(), 1)
}

func TestRegister_DuplicateName(t *testing.T) {
	l := New()
	_, err := RegisterNamed(l, "svc", newMockService())
	require.NoError(t, err)

	_, err = RegisterNamed(l, "svc", &anotherMockService{})
	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "svc", svcErr.Key)
	assert.ErrorIs(t, svcErr, ErrDuplicateService)
	assert.Equal(t, "service already registered: svc", err.Error())
}

func TestRegister_RejectsNil(t *testing.T) {
	l := New()

	var nilPtr *mockService
	_, err := Register(l, nilPtr)
	require.ErrorIs(t, err, ErrNilService)

	var nilIface greeter
	_, err = Register(l, nilIface)
	require.ErrorIs(t, err, ErrNilService)

	assert.Empty(t, l.Names())
}

func TestKey_UsesStaticTypeParameter(t *testing.T) {
	l := New()
	svc := newMockService()

	ifaceKey, err := Register[greeter](l, svc)
	require.NoError(t, err)
	concreteKey, err := Register(l, svc)
	require.NoError(t, err)

	assert.NotEqual(t, ifaceKey, concreteKey)
	assert.Equal(t, TypeName[greeter](), ifaceKey)

	g, err := Get[greeter](l)
	require.NoError(t, err)
	assert.Same(t, svc, g.(*mockService))
}

func TestGet_Inexistent(t *testing.T) {
	l := New()

	_, err := Get[*mockService](l)
	require.ErrorIs(t, err, ErrInexistentService)
	key, _ := KeyOf(err)
	assert.Equal(t, TypeName[*mockService](), key)

	_, err = GetNamed[*mockService](l, "missing")
	require.ErrorIs(t, err, ErrInexistentService)
	key, _ = KeyOf(err)
	assert.Equal(t, "missing", key)
}

func TestGet_TypeMismatch(t *testing.T) {
	l := New()
	_, err := RegisterNamed(l, "Service", newMockService())
	require.NoError(t, err)

	_, err = GetNamed[*anotherMockService](l, "Service")
	require.ErrorIs(t, err, ErrTypeMismatch)
	key, _ := KeyOf(err)
	assert.Equal(t, "Service", key)
}

func TestGetNamed_InterfaceView(t *testing.T) {
	l := New()
	svc := newMockService()
	_, err := RegisterNamed(l, "greeter", svc)
	require.NoError(t, err)

	g, err := GetNamed[greeter](l, "greeter")
	require.NoError(t, err)
	assert.Equal(t, svc.Greet(), g.Greet())
}

func TestUnregister(t *testing.T) {
	l := New()
	_, err := Register(l, newMockService())
	require.NoError(t, err)

	require.NoError(t, Unregister[*mockService](l))
	assert.Empty(t, l.Names())

	err = Unregister[*mockService](l)
	require.ErrorIs(t, err, ErrInexistentService)
}

func TestUnregister_DoesNotTypeCheck(t *testing.T) {
	l := New()
	_, err := RegisterNamed(l, "shared", 42)
	require.NoError(t, err)

	require.NoError(t, UnregisterNamed[string](l, "shared"))
	assert.False(t, l.Has("shared"))
}

func TestUnregister_KeepsOrderOfRemaining(t *testing.T) {
	l := New()
	for _, name := range []string{"a", "b", "c"} {
		_, err := RegisterNamed(l, name, name)
		require.NoError(t, err)
	}
	require.NoError(t, UnregisterNamed[string](l, "b"))
	assert.Equal(t, []string{"a", "c"}, l.Names())
}

func TestClear(t *testing.T) {
	l := New()
	l.Clear()
	assert.Empty(t, l.Names())

	_, err := Register(l, newMockService())
	require.NoError(t, err)
	_, err = RegisterNamed(l, "answer", 42)
	require.NoError(t, err)

	l.Clear()
	assert.Empty(t, l.Names())
	assert.Equal(t, 0, l.Len())

	_, err = Get[*mockService](l)
	assert.ErrorIs(t, err, ErrInexistentService)
}

func TestNames_IsSnapshot(t *testing.T) {
	l := New()
	_, err := RegisterNamed(l, "one", 1)
	require.NoError(t, err)

	names := l.Names()
	names[0] = "mutated"
	assert.Equal(t, []string{"one"}, l.Names())
}

func TestAnswerScenario(t *testing.T) {
	l := New()

	key, err := RegisterNamed(l, "answer", 42)
	require.NoError(t, err)
	assert.Equal(t, "answer", key)

	v, err := GetNamed[int](l, "answer")
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	_, err = GetNamed[string](l, "answer")
	require.ErrorIs(t, err, ErrTypeMismatch)
	key, _ = KeyOf(err)
	assert.Equal(t, "answer", key)

	require.NoError(t, UnregisterNamed[int](l, "answer"))

	_, err = GetNamed[int](l, "answer")
	require.ErrorIs(t, err, ErrInexistentService)
	key, _ = KeyOf(err)
	assert.Equal(t, "answer", key)
}

func TestGetOrRegister_ReturnsExisting(t *testing.T) {
	l := New()
	svc := &mockLocatableService{id: uuid.New()}
	_, err := Register(l, svc)
	require.NoError(t, err)

	located := GetOrRegister[mockLocatableService](l)
	assert.Same(t, svc, located)
	assert.Equal(t, 0, located.initialized)
}

func TestGetOrRegister_CreatesAndRegisters(t *testing.T) {
	l := New()

	first := GetOrRegister[mockLocatableService](l)
	require.NotNil(t, first)
	assert.Equal(t, 1, first.initialized)
	assert.NotEqual(t, uuid.Nil, first.id)

	second := GetOrRegister[mockLocatableService](l)
	assert.Same(t, first, second)
	assert.Equal(t, []string{TypeName[*mockLocatableService]()}, l.Names())

	located, err := Get[*mockLocatableService](l)
	require.NoError(t, err)
	assert.Same(t, first, located)
}

func TestGetOrRegister_PanicsOnTypeMismatch(t *testing.T) {
	l := New()
	_, err := RegisterNamed(l, TypeName[*mockLocatableService](), "not a service")
	require.NoError(t, err)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.True(t, errors.Is(err, ErrTypeMismatch))
	}()
	GetOrRegister[mockLocatableService](l)
}

func TestGetOrRegisterFunc_Interface(t *testing.T) {
	l := New()
	calls := 0
	factory := func() greeter {
		calls++
		return newMockService()
	}

	first := GetOrRegisterFunc(l, factory)
	second := GetOrRegisterFunc(l, factory)

	assert.Same(t, first.(*mockService), second.(*mockService))
	assert.Equal(t, 1, calls)
	assert.True(t, l.Has(TypeName[greeter]()))
}

func TestGetOrRegisterFunc_NilFactoryResultPanics(t *testing.T) {
	l := New()

	var recovered any
	func() {
		defer func() { recovered = recover() }()
		GetOrRegisterFunc(l, func() greeter { return nil })
	}()

	require.NotNil(t, recovered)
	err, ok := recovered.(error)
	require.True(t, ok)
	assert.ErrorIs(t, err, ErrNilService)

	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, TypeName[greeter](), svcErr.Key)
	assert.Empty(t, l.Names())
}

func TestGetOrRegisterFunc_FactoryMayUseLocator(t *testing.T) {
	l := New()
	_, err := RegisterNamed(l, "prefix", "hi")
	require.NoError(t, err)

	svc := GetOrRegisterFunc(l, func() greeter {
		prefix, err := GetNamed[string](l, "prefix")
		require.NoError(t, err)
		require.Equal(t, "hi", prefix)
		return newMockService()
	})
	assert.NotNil(t, svc)
}

func TestGetOrRegister_ConcurrentFirstUse(t *testing.T) {
	l := New()
	var constructed atomic.Int32

	const workers = 64
	results := make([]greeter, workers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i] = GetOrRegisterFunc(l, func() greeter {
				constructed.Add(1)
				return newMockService()
			})
		}(i)
	}
	close(start)
	wg.Wait()

	for _, r := range results[1:] {
		assert.Same(t, results[0].(*mockService), r.(*mockService))
	}
	assert.Equal(t, int32(1), constructed.Load())
	assert.Equal(t, 1, l.Len())
}

func TestRegister_ConcurrentSameKeyOnlyOneWins(t *testing.T) {
	l := New()
	const workers = 32
	var wins atomic.Int32
	var dups atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Register(l, newMockService())
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, ErrDuplicateService):
				dups.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(workers-1), dups.Load())
}

func TestLocator_ConcurrentMixedAccess(t *testing.T) {
	l := New()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(3)
		go func(i int) {
			defer wg.Done()
			name := uuid.NewString()
			_, _ = RegisterNamed(l, name, i)
			_, _ = GetNamed[int](l, name)
			_ = UnregisterNamed[int](l, name)
		}(i)
		go func() {
			defer wg.Done()
			_ = l.Names()
			_ = l.Len()
		}()
		go func() {
			defer wg.Done()
			GetOrRegister[mockLocatableService](l)
		}()
	}
	wg.Wait()

	assert.Equal(t, []string{TypeName[*mockLocatableService]()}, l.Names())
}

func TestMustGet(t *testing.T) {
	l := New()
	assert.Panics(t, func() { MustGet[*mockService](l) })

	svc := newMockService()
	_, err := Register(l, svc)
	require.NoError(t, err)
	assert.Same(t, svc, MustGet[*mockService](l))
}

func TestDefault(t *testing.T) {
	original := Default()
	require.NotNil(t, original)
	t.Cleanup(func() { SetDefault(original) })

	replacement := New()
	SetDefault(replacement)
	assert.Same(t, replacement, Default())

	SetDefault(nil)
	assert.Same(t, replacement, Default())
}
