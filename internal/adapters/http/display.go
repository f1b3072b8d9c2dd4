// Package http serves the inspector to a browser: the composed frame as a
// PNG, the view title and banner as JSON, and key presses back into the
// navigation queue.
package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/bft-labs/vpxview/internal/adapters/raster"
	"github.com/bft-labs/vpxview/internal/domain"
	"github.com/bft-labs/vpxview/internal/ports"
	"github.com/bft-labs/vpxview/pkg/overlay"
)

const readHeaderTimeout = 10 * time.Second

// Display implements ports.Display over HTTP. Present stores the last
// composed frame in a single slot that handlers read.
type Display struct {
	addr       string
	compositor *raster.Compositor
	logger     ports.Logger
	echo       *echo.Echo

	mu     sync.RWMutex
	frame  []byte
	title  string
	banner string
	seq    uint64
	sink   ports.KeySink
}

// StateResponse is returned by GET /api/state.
type StateResponse struct {
	Title  string `json:"title"`
	Banner string `json:"banner,omitempty"`
	Seq    uint64 `json:"seq"`
}

// KeyResponse is returned by POST /api/keys/:key.
type KeyResponse struct {
	Key    string `json:"key"`
	Queued bool   `json:"queued"`
}

// NewDisplay creates a display listening on addr once served.
func NewDisplay(addr string, c *raster.Compositor, logger ports.Logger) *Display {
	d := &Display{addr: addr, compositor: c, logger: logger}
	e := echo.New()
	e.Use(middleware.Recover())
	d.Register(e)
	d.echo = e
	return d
}

// Register mounts the display routes on e.
func (d *Display) Register(e *echo.Echo) {
	e.GET("/", d.handleIndex)
	e.GET("/frame.png", d.handleFrame)
	e.GET("/api/state", d.handleState)
	e.POST("/api/keys/:key", d.handleKey)
}

// Handler returns the HTTP handler serving the display.
func (d *Display) Handler() http.Handler {
	return d.echo
}

// Bind sets the queue receiving browser keys.
func (d *Display) Bind(sink ports.KeySink) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sink = sink
}

// Present composes scene and makes it the frame served to browsers.
func (d *Display) Present(scene overlay.Scene, title string) error {
	var buf bytes.Buffer
	if err := raster.EncodePNG(&buf, d.compositor.Compose(scene)); err != nil {
		return err
	}

	d.mu.Lock()
	d.frame = buf.Bytes()
	d.title = title
	d.banner = scene.Banner
	d.seq++
	d.mu.Unlock()
	return nil
}

// Serve binds sink and listens until ctx is done.
func (d *Display) Serve(ctx context.Context, sink ports.KeySink) error {
	d.Bind(sink)
	d.logger.Info("display listening", ports.String("address", "http://"+d.addr))

	sc := echo.StartConfig{
		Address: d.addr,
		BeforeServeFunc: func(srv *http.Server) error {
			srv.ReadHeaderTimeout = readHeaderTimeout
			return nil
		},
	}
	err := sc.Start(ctx, d.echo)
	if errors.Is(err, http.ErrServerClosed) || ctx.Err() != nil {
		return nil
	}
	return err
}

func (d *Display) handleIndex(c *echo.Context) error {
	return c.HTML(http.StatusOK, indexHTML)
}

func (d *Display) handleFrame(c *echo.Context) error {
	d.mu.RLock()
	frame := d.frame
	d.mu.RUnlock()

	if frame == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no frame presented yet"})
	}
	c.Response().Header().Set("Cache-Control", "no-store")
	return c.Blob(http.StatusOK, "image/png", frame)
}

func (d *Display) handleState(c *echo.Context) error {
	d.mu.RLock()
	resp := StateResponse{Title: d.title, Banner: d.banner, Seq: d.seq}
	d.mu.RUnlock()
	return c.JSON(http.StatusOK, resp)
}

func (d *Display) handleKey(c *echo.Context) error {
	key := domain.ParseKey(c.Param("key"))
	if key == domain.KeyNone || key == domain.KeyReload {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown key " + c.Param("key")})
	}

	d.mu.RLock()
	sink := d.sink
	d.mu.RUnlock()
	if sink == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "viewer not running"})
	}

	if !sink.Send(key) {
		return c.JSON(http.StatusTooManyRequests, KeyResponse{Key: key.String()})
	}
	return c.JSON(http.StatusAccepted, KeyResponse{Key: key.String(), Queued: true})
}

const indexHTML = `<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>vpxview</title>
<style>
body { background: #111; color: #ddd; font: 13px sans-serif; margin: 12px; }
#banner { color: #f66; min-height: 1.2em; }
img { image-rendering: pixelated; display: block; margin-top: 8px; }
</style>
</head>
<body>
<div id="title"></div>
<div id="banner"></div>
<img id="frame" alt="">
<p>LEFT / RIGHT step, F fills, M motion vectors, L labels, Q quit</p>
<script>
const keys = { ArrowLeft: "left", ArrowRight: "right", q: "q", Escape: "escape", f: "f", m: "m", l: "l" };
let seq = -1;
document.addEventListener("keydown", ev => {
  const k = keys[ev.key];
  if (!k) return;
  ev.preventDefault();
  fetch("/api/keys/" + k, { method: "POST" });
});
async function poll() {
  try {
    const s = await (await fetch("/api/state")).json();
    document.getElementById("title").textContent = s.title;
    document.getElementById("banner").textContent = s.banner || "";
    document.title = s.title || "vpxview";
    if (s.seq !== seq) {
      seq = s.seq;
      document.getElementById("frame").src = "/frame.png?seq=" + seq;
    }
  } catch (e) {}
  setTimeout(poll, 200);
}
poll();
</script>
</body>
</html>
`
