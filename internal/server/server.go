// Package server implements a live training monitor: one view (a reward
// curve) fed by the agent loop's ProgressFunc and pushed to any number of
// connected browser tabs over websocket, routed with gorilla/mux.
package server

import (
	"context"
	"fmt"
	"html/template"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"rlharness/episode"
)

const indexTemplate = `
<!doctype html>
<html>
<head><title>rlharness training monitor</title></head>
<body>
{{template "reward-curve" .}}
<script>
  const ws = new WebSocket("ws://" + location.host + "/ws");
  ws.onmessage = (evt) => {
    const updates = JSON.parse(evt.data);
    for (const u of updates) {
      const ele = document.getElementById(u.EleId);
      if (!ele) continue;
      for (const op of u.Ops) {
        if (op.Key === "textContent") {
          ele.textContent = op.Value;
        } else {
          ele.setAttribute(op.Key, op.Value);
        }
      }
    }
  };
</script>
</body>
</html>
`

// Server serves the live training dashboard: a single index page rendering
// the registered views, and a websocket endpoint streaming their updates.
type Server struct {
	addr    string
	router  *mux.Router
	views   []ViewComponent
	index   *template.Template
	samples chan RewardSample
	logger  *log.Logger
}

// New builds a Server listening on addr, with one reward-curve view wired
// to samples fed via Publish. ctx bounds the view's background goroutine;
// cancelling it stops the dashboard from updating but does not stop the
// HTTP server that Serve runs.
func New(ctx context.Context, addr string, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Default()
	}

	samples := make(chan RewardSample, 64)
	views := []ViewComponent{newRewardCurveView(ctx.Done(), samples)}

	index := template.New("index")
	for _, v := range views {
		if _, err := v.Parse(index); err != nil {
			return nil, fmt.Errorf("server: parsing view: %w", err)
		}
	}
	if _, err := index.Parse(indexTemplate); err != nil {
		return nil, fmt.Errorf("server: parsing index: %w", err)
	}

	s := &Server{
		addr:    addr,
		router:  mux.NewRouter(),
		views:   views,
		index:   index,
		samples: samples,
		logger:  logger,
	}
	s.router.HandleFunc("/", s.serveIndex)
	s.router.HandleFunc("/ws", s.serveWebsocket)

	return s, nil
}

// Publish feeds one episode's outcome to the dashboard. Non-blocking: a
// training loop that outruns the dashboard's render rate drops samples
// rather than stall, since only the latest value matters to a freshly
// rendered curve.
func (s *Server) Publish(sample RewardSample) {
	select {
	case s.samples <- sample:
	default:
	}
}

// ProgressFunc returns a callback matching agent.ProgressFunc's signature
// (agent itself stays free of any server import) so the CLI frontend can
// wire it straight into Agent.Progress.
func (s *Server) ProgressFunc() func(episodeIndex int, ep *episode.Episode) {
	return func(episodeIndex int, ep *episode.Episode) {
		s.Publish(RewardSample{Episode: episodeIndex, Cumulative: ep.CumulativeReward()})
	}
}

// Serve blocks, serving the dashboard until the process is killed or the
// listener errors.
func (s *Server) Serve() error {
	s.logger.Printf("dashboard listening on %s", s.addr)
	if err := http.ListenAndServe(s.addr, s.router); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	if err := s.index.ExecuteTemplate(w, "index", nil); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// serveWebsocket fans every view's update channel into one client publisher
// per connection. Each connected tab gets its own fan-in goroutine, so N
// browser tabs see N independent (but identically-sourced) update streams.
func (s *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	merged := make(chan []EleUpdate)
	done := r.Context().Done()

	for _, v := range s.views {
		go func(v ViewComponent) {
			for {
				select {
				case <-done:
					return
				case u, ok := <-v.Updates():
					if !ok {
						return
					}
					select {
					case merged <- u:
					case <-done:
						return
					}
				}
			}
		}(v)
	}

	cli, err := newWSClient(merged, w, r)
	if err != nil {
		return
	}
	if err := cli.sync(); err != nil {
		s.logger.Printf("dashboard client disconnected: %v", err)
	}
}
