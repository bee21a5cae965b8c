package camera

import (
	"context"
	"io"
	"regexp"

	"github.com/a-h/templ"

	"github.com/johndosdos/atalaia/components"
	"github.com/johndosdos/atalaia/internal/model"
)

var directVideo = regexp.MustCompile(`(?i)\.(mp4|webm|ogg|m3u8)$`)

// IsDirectVideo reports whether url points at a file a <video> element can
// play, as opposed to an embeddable player page.
func IsDirectVideo(url string) bool {
	return directVideo.MatchString(url)
}

// Player renders the live feed of hood, or the locked notice when user's
// plan does not include cameras.
func Player(user model.User, hood model.Neighborhood) templ.Component {
	if !user.CanViewCameras() {
		return components.Page("Recurso Bloqueado", nil, Locked())
	}
	return components.Page(hood.Name, nil, Feed(hood))
}

// Feed is the player element for hood's feed locator.
func Feed(hood model.Neighborhood) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		src := string(templ.URL(hood.IframeURL))

		var player string
		if IsDirectVideo(hood.IframeURL) {
			player = `<video src="` + templ.EscapeString(src) + `" controls autoplay muted loop class="camera-feed"></video>`
		} else {
			player = `<iframe src="` + templ.EscapeString(src) + `" class="camera-feed" frameborder="0" allowfullscreen` +
				` allow="accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture"` +
				` title="Camera Feed"></iframe>`
		}

		_, err := io.WriteString(w, `<section class="camera"><h1>`+templ.EscapeString(hood.Name)+`</h1>`+
			`<div class="camera-frame">`+player+`<span class="live">AO VIVO</span></div></section>`)
		return err
	})
}

// Locked tells a FREE user which plans unlock the cameras.
func Locked() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<section class="camera locked"><h2>Recurso Bloqueado</h2>`+
			`<p>O monitoramento de câmeras está disponível apenas para os planos Família e Prêmio.</p>`+
			`<a href="/api/plans" class="button">Ver planos</a></section>`)
		return err
	})
}
