package route

import (
	"net/http"
	"strings"

	"mediafeed/backend/common"
	"mediafeed/backend/service"

	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
)

// landedFileSystem hides dot-prefixed entries, which includes uploads that
// are still being written.
type landedFileSystem struct {
	static.ServeFileSystem
}

func (fs landedFileSystem) Exists(prefix string, filepath string) bool {
	if strings.Contains(filepath, "/.") {
		return false
	}
	return fs.ServeFileSystem.Exists(prefix, filepath)
}

// setUploadRouter serves landed files under the public URL prefix.
func setUploadRouter(route *gin.Engine, lander *service.Lander) {
	files := landedFileSystem{static.LocalFile(lander.Dir(), false)}
	route.Use(static.Serve(lander.URLPrefix(), files))
	route.NoRoute(func(c *gin.Context) {
		common.RespDetail(c, http.StatusNotFound, "Not Found")
	})
}
