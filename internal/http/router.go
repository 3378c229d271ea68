package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterGroupRoutes 注册团组下的全部路由
// 路径形如 /api/v1/groups/{groupID}/{resource}[/...]，
// documents/roster 归证件识别 Handler，rooms/assignments 归分房 Handler
func (r *Router) RegisterGroupRoutes(doc *DocumentHandler, rooming *RoomingHandler) {
	r.Handle("/api/v1/groups/", func(w http.ResponseWriter, req *http.Request) {
		rest := strings.TrimPrefix(req.URL.Path, "/api/v1/groups/")
		parts := strings.SplitN(rest, "/", 3)
		if len(parts) < 2 || parts[0] == "" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		groupID, resource := parts[0], parts[1]
		tail := ""
		if len(parts) == 3 {
			tail = parts[2]
		}

		switch resource {
		case "documents", "roster":
			doc.Serve(w, req, groupID, resource, tail)
		case "rooms", "assignments":
			rooming.Serve(w, req, groupID, resource, tail)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	r.Handle("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}
