package packages

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webdesk/internal/api/middleware"
	"github.com/GriffinCanCode/webdesk/internal/domain/packages"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/tracing"
)

type installRequest struct {
	URL     string                  `json:"url"`
	Options packages.InstallOptions `json:"options"`
}

func userOf(c *gin.Context) packages.User {
	session, ok := middleware.Session(c)
	if !ok {
		return packages.User{}
	}
	return packages.User{Username: session.Username, Groups: session.Groups}
}

func (p *Provider) handleManifest(c *gin.Context) {
	list, err := p.manager.ReadPackageManifests(c.Request.Context(), userOf(c))
	if err != nil {
		p.fail(c, "manifest", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (p *Provider) handleInstall(c *gin.Context) {
	var req installRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		p.fail(c, "install", &packages.Error{Kind: packages.KindInvalid, Op: "install", Err: err})
		return
	}

	result, err := p.manager.InstallPackage(c.Request.Context(), userOf(c), req.URL, req.Options)
	if err != nil {
		p.fail(c, "install", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "reload": result.Reload})
}

// fail answers every package failure with 400 and the error message. The
// kind only decides the log level.
func (p *Provider) fail(c *gin.Context, route string, err error) {
	kind := packages.KindOf(err)
	log := tracing.GinLogger(c, p.logger)
	fields := []zap.Field{zap.String("route", route), zap.String("kind", string(kind)), zap.Error(err)}

	if kind.Client() {
		log.Warn("Package request rejected", fields...)
	} else {
		log.Error("Package request failed", fields...)
	}

	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
