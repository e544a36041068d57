package ui

import (
	"embed"
	"io/fs"
	"net/http"
	"net/url"
	"strings"

	logs_core "loglens/internal/features/logs/core"

	"github.com/gin-gonic/gin"
)

//go:embed assets
var embeddedAssets embed.FS

const configPlaceholder = "%(Configs)"

// runtimeConfig is injected into the index document so the UI knows where
// it is mounted and whether to offer a token prompt.
type runtimeConfig struct {
	RoutePrefix string `json:"routePrefix"`
	AuthEnabled bool   `json:"authEnabled"`
}

type UIController struct {
	routePrefix string
	config      runtimeConfig
	assets      fs.FS
}

func NewUIController(routePrefix string, authEnabled bool) *UIController {
	assets, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		// The assets directory is compiled in; a failure here is a build defect.
		panic(err)
	}

	return &UIController{
		routePrefix: routePrefix,
		config:      runtimeConfig{RoutePrefix: routePrefix, AuthEnabled: authEnabled},
		assets:      assets,
	}
}

// RegisterRoutes mounts the UI bootstrap routes and the static fallback.
// The data API is registered explicitly elsewhere, so it always wins over
// the no-route asset handler.
func (c *UIController) RegisterRoutes(engine *gin.Engine) {
	prefix := "/" + c.routePrefix

	engine.GET(prefix, c.RedirectToIndex)
	engine.GET(prefix+"/index.html", c.ServeIndex)
	engine.NoRoute(c.ServeAsset)
}

// RedirectToIndex sends the bare route prefix to the index document.
func (c *UIController) RedirectToIndex(ctx *gin.Context) {
	indexURL := strings.TrimRight(ctx.Request.URL.Path, "/") + "/index.html"
	ctx.Redirect(http.StatusMovedPermanently, indexURL)
}

// ServeIndex serves the embedded index document with the runtime
// configuration substituted for the %(Configs) placeholder.
func (c *UIController) ServeIndex(ctx *gin.Context) {
	indexDocument, err := fs.ReadFile(c.assets, "index.html")
	if err != nil {
		ctx.Status(http.StatusInternalServerError)
		return
	}

	encodedConfig := url.QueryEscape(logs_core.CanonicalJSON(c.config))
	rendered := strings.ReplaceAll(string(indexDocument), configPlaceholder, encodedConfig)

	ctx.Data(http.StatusOK, "text/html; charset=utf-8", []byte(rendered))
}

// ServeAsset is the generic static handler for everything else under the
// route prefix; anything outside the prefix or not embedded is a 404.
func (c *UIController) ServeAsset(ctx *gin.Context) {
	prefix := "/" + c.routePrefix + "/"
	path := ctx.Request.URL.Path

	if !strings.HasPrefix(path, prefix) {
		ctx.Status(http.StatusNotFound)
		return
	}

	assetPath := strings.TrimPrefix(path, prefix)
	if assetPath == "" || strings.Contains(assetPath, "..") {
		ctx.Status(http.StatusNotFound)
		return
	}

	if _, err := fs.Stat(c.assets, assetPath); err != nil {
		ctx.Status(http.StatusNotFound)
		return
	}

	ctx.FileFromFS(assetPath, http.FS(c.assets))
}
