package schedule

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/goliatone/go-hemoform/pkg/client"
	"github.com/goliatone/go-hemoform/pkg/definitions"
	"github.com/goliatone/go-hemoform/pkg/formstate"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubTransport struct {
	mu     sync.Mutex
	bodies []map[string]any
	fail   map[int]bool
}

func (s *stubTransport) Do(_ context.Context, req client.Request) (client.Response, error) {
	body := req.Body.(map[string]any)
	s.mu.Lock()
	s.bodies = append(s.bodies, body)
	s.mu.Unlock()
	day := body[FieldWeekday].(int)
	if s.fail[day] {
		if day%2 == 0 {
			return client.Response{}, errors.New("connection reset")
		}
		return client.Response{StatusCode: 500, Success: false}, nil
	}
	return client.Response{StatusCode: 201, Success: true}, nil
}

func newPlanner(t *testing.T, transport Transport, opts ...Option) (*formstate.State, *Planner) {
	t.Helper()
	store, err := definitions.Default()
	require.NoError(t, err)
	spec, ok := store.Form("horario")
	require.True(t, ok)
	state, err := formstate.New(spec)
	require.NoError(t, err)
	opts = append([]Option{WithTokens(client.NewMemoryTokens("tok"))}, opts...)
	planner, err := New(state, transport, opts...)
	require.NoError(t, err)
	return state, planner
}

func stage(t *testing.T, state *formstate.State, p *Planner, day, opening, closing string) (Entry, error) {
	t.Helper()
	_, err := state.Fill(map[string]any{
		FieldWeekday: day,
		FieldOpening: opening,
		FieldClosing: closing,
	})
	require.NoError(t, err)
	return p.Add()
}

func TestAddKeepsWeekdayOrderAndRejectsDuplicates(t *testing.T) {
	state, p := newPlanner(t, &stubTransport{})

	_, err := stage(t, state, p, "3", "08:00", "17:00")
	require.NoError(t, err)
	_, err = stage(t, state, p, "1", "07:30", "12:00")
	require.NoError(t, err)
	assert.Empty(t, state.String(FieldOpening), "entry form resets after add")

	_, err = stage(t, state, p, "3", "09:00", "10:00")
	var dup DuplicateDayError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "Quarta-feira já foi adicionado", Message(err))

	entries := p.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Weekday)
	assert.Equal(t, 3, entries[1].Weekday)

	removed, err := p.Remove(0)
	require.NoError(t, err)
	assert.Equal(t, "Segunda-feira", WeekdayName(removed.Weekday))
	_, err = p.Remove(5)
	require.Error(t, err)
}

func TestAddRejectsInvalidEntry(t *testing.T) {
	state, p := newPlanner(t, &stubTransport{})
	_, err := stage(t, state, p, "2", "18:00", "08:00")
	require.ErrorIs(t, err, ErrInvalidEntry)
	assert.Equal(t, "Verifique os dados antes de continuar.", Message(err))
	assert.Empty(t, p.Entries())
}

func TestSubmitAllSucceed(t *testing.T) {
	transport := &stubTransport{}
	state, p := newPlanner(t, transport, WithConcurrency(2))
	for _, day := range []string{"0", "1", "2", "3", "4"} {
		_, err := stage(t, state, p, day, "08:00", "12:00")
		require.NoError(t, err)
	}

	report, err := p.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Report{Saved: 5, Message: "Todos os horários cadastrados com sucesso!"}, report)
	assert.Empty(t, p.Entries())

	require.Len(t, transport.bodies, 5)
	for _, body := range transport.bodies {
		assert.Equal(t, true, body["ativo"])
		assert.Equal(t, "08:00", body[FieldOpening])
	}
}

func TestAddAppliesFieldTransforms(t *testing.T) {
	transport := &stubTransport{}
	state, p := newPlanner(t, transport)
	_, err := state.Fill(map[string]any{
		FieldWeekday: " 4 ",
		FieldOpening: " 08:00",
		FieldClosing: "12:00",
		FieldNote:    "<script>alert(1)</script>Fechado",
	})
	require.NoError(t, err)

	entry, err := p.Add()
	require.NoError(t, err)
	assert.Equal(t, "Fechado", entry.Note)
	assert.Equal(t, "08:00", entry.Opening)

	_, err = p.Submit(context.Background())
	require.NoError(t, err)
	require.Len(t, transport.bodies, 1)
	body := transport.bodies[0]
	assert.Equal(t, "Fechado", body[FieldNote])
	assert.Equal(t, 4, body[FieldWeekday])
	assert.Equal(t, true, body["ativo"])
}

func TestSubmitPartialFailureKeepsList(t *testing.T) {
	transport := &stubTransport{fail: map[int]bool{2: true, 5: true}}
	state, p := newPlanner(t, transport)
	for _, day := range []string{"1", "2", "5"} {
		_, err := stage(t, state, p, day, "08:00", "12:00")
		require.NoError(t, err)
	}

	report, err := p.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Saved)
	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, "1 horário(s) salvos, 2 falharam.", report.Message)
	assert.Len(t, p.Entries(), 3)
}

func TestSubmitGuards(t *testing.T) {
	_, p := newPlanner(t, &stubTransport{})
	_, err := p.Submit(context.Background())
	require.ErrorIs(t, err, ErrNothingStaged)
	assert.Equal(t, "Adicione pelo menos um horário.", Message(err))

	_, anon := newPlanner(t, &stubTransport{}, WithTokens(client.NewMemoryTokens("")))
	_, err = anon.Submit(context.Background())
	require.ErrorIs(t, err, ErrAuthRequired)
}

func TestPlannersDoNotShareState(t *testing.T) {
	stateA, a := newPlanner(t, &stubTransport{})
	_, b := newPlanner(t, &stubTransport{})
	_, err := stage(t, stateA, a, "6", "08:00", "12:00")
	require.NoError(t, err)
	assert.Len(t, a.Entries(), 1)
	assert.Empty(t, b.Entries())
}
