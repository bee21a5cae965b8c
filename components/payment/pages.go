package payment

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/johndosdos/atalaia/components"
	"github.com/johndosdos/atalaia/internal/model"
)

// RedirectAfter is how long the success page waits before going to the
// dashboard, in seconds.
const RedirectAfter = 3

func redirectHead() templ.Component {
	return templ.Raw(`<meta http-equiv="refresh" content="` + strconv.Itoa(RedirectAfter) + `;url=/dashboard">`)
}

// Success confirms that plan is now active.
func Success(plan model.Plan) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<section class="payment success"><h2>Pagamento Confirmado!</h2>`+
			`<p>Seu plano <strong>`+templ.EscapeString(plan.Name)+`</strong> foi ativado com sucesso.</p>`+
			`<p class="hint">Redirecionando para o painel...</p>`+
			`<a href="/dashboard" class="button">Ir para o Painel Agora</a></section>`)
		return err
	})
	return components.Page("Pagamento Confirmado", redirectHead(), body)
}

// Unconfirmed is shown when the return from the gateway carries no valid
// plan.
func Unconfirmed() templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<section class="payment pending"><h2>Verificando...</h2>`+
			`<p>Não foi possível confirmar automaticamente.</p>`+
			`<a href="/dashboard" class="button">Voltar ao Dashboard</a></section>`)
		return err
	})
	return components.Page("Verificando pagamento", nil, body)
}
