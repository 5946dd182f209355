package fieldset

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-hemoform/pkg/formstate"
	"github.com/goliatone/go-hemoform/pkg/model"
)

func registrationSpec() model.FormSpec {
	return model.FormSpec{
		ID: "cadastro",
		Fields: []model.FieldSpec{
			{Key: "tipoUser", Kind: model.KindChoice, Options: []string{"doador", "hemocentro"}, Required: true},
			{Key: "nome", Kind: model.KindText, Required: true},
			{Key: "cpf", Kind: model.KindDocument, Document: model.DocumentCPF, Required: true},
			{Key: "tipoSanguineo", Kind: model.KindChoice, Options: []string{"A+", "O-"}, Required: true},
			{Key: "cnpj", Kind: model.KindDocument, Document: model.DocumentCNPJ, Required: true},
			{Key: "telefone", Kind: model.KindPhone, Required: true},
		},
		Fieldsets: []model.Fieldset{
			{Name: "doador", Fields: []string{"cpf", "tipoSanguineo", "telefone"}},
			{Name: "colaborador", Fields: []string{"cnpj", "telefone"}},
		},
		Discriminator: &model.Discriminator{
			Key: "tipoUser",
			Modes: map[string][]string{
				"doador":     {"doador"},
				"hemocentro": {"colaborador"},
			},
			Default: "doador",
		},
	}
}

type recordingView struct {
	visible map[string]bool
	enabled map[string]bool
}

func newRecordingView() *recordingView {
	return &recordingView{visible: map[string]bool{}, enabled: map[string]bool{}}
}

func (v *recordingView) SetFieldsetVisible(name string, visible bool) { v.visible[name] = visible }
func (v *recordingView) SetFieldEnabled(key string, enabled bool)     { v.enabled[key] = enabled }

func newController(t *testing.T, opts ...Option) (*formstate.State, *Controller) {
	t.Helper()
	state, err := formstate.New(registrationSpec())
	if err != nil {
		t.Fatalf("formstate: %v", err)
	}
	ctrl, err := New(state, opts...)
	if err != nil {
		t.Fatalf("fieldset: %v", err)
	}
	return state, ctrl
}

func TestNewRequiresDiscriminator(t *testing.T) {
	spec := registrationSpec()
	spec.Discriminator = nil
	state, err := formstate.New(spec)
	if err != nil {
		t.Fatalf("formstate: %v", err)
	}
	if _, err := New(state); !errors.Is(err, ErrNoDiscriminator) {
		t.Fatalf("expected ErrNoDiscriminator, got %v", err)
	}
}

func TestInitialActivationUsesDefaultMode(t *testing.T) {
	view := newRecordingView()
	state, ctrl := newController(t, WithView(view))

	if ctrl.Mode() != "doador" || state.String("tipoUser") != "doador" {
		t.Fatalf("expected default mode seeded, got %q", ctrl.Mode())
	}
	if diff := cmp.Diff([]string{"doador"}, ctrl.ActiveFieldsets()); diff != "" {
		t.Fatalf("active fieldsets mismatch (-want +got):\n%s", diff)
	}
	if state.Active("cnpj") || !state.Active("cpf") {
		t.Fatalf("expected cpf active and cnpj inactive")
	}
	want := map[string]bool{"doador": true, "colaborador": false}
	if diff := cmp.Diff(want, view.visible); diff != "" {
		t.Fatalf("visibility mismatch (-want +got):\n%s", diff)
	}
	if view.enabled["cnpj"] || !view.enabled["telefone"] {
		t.Fatalf("unexpected enabled map %+v", view.enabled)
	}
}

func TestResetReturnsToDefaultMode(t *testing.T) {
	state, ctrl := newController(t)
	if _, err := ctrl.Select("hemocentro"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if state.Active("cpf") {
		t.Fatalf("cpf must be inactive in collaborator mode")
	}

	state.Reset()

	if ctrl.Mode() != "doador" || state.String("tipoUser") != "doador" {
		t.Fatalf("expected default mode after reset, got %q", ctrl.Mode())
	}
	if !state.Active("cpf") || state.Active("cnpj") {
		t.Fatalf("expected donor fieldset active after reset")
	}
}

func TestModeSwitchUnblocksInactiveFields(t *testing.T) {
	state, ctrl := newController(t)
	if _, err := state.Fill(map[string]any{
		"nome":     "Hemocentro Central",
		"cnpj":     "00.000.000/0000-00",
		"telefone": "11 99999-0000",
	}); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if state.SubmitAllowed() {
		t.Fatalf("donor mode requires cpf and blood type")
	}

	allowed, err := ctrl.Select("hemocentro")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if !allowed {
		t.Fatalf("collaborator mode must not be blocked by donor fields: %+v", state.Results())
	}
	result, _ := state.Result("cpf")
	if result.Active || !result.Valid {
		t.Fatalf("cpf must be inactive and non-blocking, got %+v", result)
	}
	if !state.Active("telefone") {
		t.Fatalf("shared field must stay active")
	}

	if _, err := ctrl.Select("doador"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if state.SubmitAllowed() || state.Active("cnpj") {
		t.Fatalf("switching back must restore donor requirements")
	}
}

func TestUnknownModeDeactivatesDiscriminatedFields(t *testing.T) {
	state, ctrl := newController(t)
	// Choice validation flags the unknown value itself.
	if _, err := ctrl.Select("admin"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if ctrl.Mode() != "admin" || ctrl.Known("admin") {
		t.Fatalf("expected raw unknown mode reported")
	}
	if len(ctrl.ActiveFieldsets()) != 0 {
		t.Fatalf("expected no active fieldsets, got %v", ctrl.ActiveFieldsets())
	}
	for _, key := range []string{"cpf", "tipoSanguineo", "cnpj", "telefone"} {
		if state.Active(key) {
			t.Fatalf("%s must be inactive in an unknown mode", key)
		}
	}
	if !state.Active("nome") {
		t.Fatalf("undiscriminated field must stay active")
	}
}

func TestModesSorted(t *testing.T) {
	_, ctrl := newController(t)
	if diff := cmp.Diff([]string{"doador", "hemocentro"}, ctrl.Modes()); diff != "" {
		t.Fatalf("modes mismatch (-want +got):\n%s", diff)
	}
}
