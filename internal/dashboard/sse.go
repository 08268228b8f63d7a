package dashboard

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/tickora/internal/board"
)

// boardVersion identifies a board state: the item count and the latest
// update time across columns.
type boardVersion struct {
	items  int
	latest int64 // unix nanoseconds
}

func versionOf(cols []board.Column) boardVersion {
	var v boardVersion
	for _, col := range cols {
		for _, w := range col.Items {
			v.items++
			v.latest = max(v.latest, w.UpdatedAt.UnixNano())
		}
	}
	return v
}

// boardEvents streams the project board as server-sent events. A "board"
// event is sent on connect and whenever the projection changes.
func (a *api) boardEvents(c *gin.Context) {
	cols, err := a.projectBoard(c)
	if err != nil {
		fail(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	writeSSE(c.Writer, "board", cols)
	c.Writer.Flush()
	last := versionOf(cols)

	ctx := c.Request.Context()
	ticker := time.NewTicker(a.opts.PollInterval)
	heartbeat := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			writeSSE(c.Writer, "heartbeat", map[string]string{
				"timestamp": a.opts.Clock().Format(time.RFC3339),
			})
			c.Writer.Flush()
		case <-ticker.C:
			cols, err := a.projectBoard(c)
			if err != nil {
				// Project deleted or columns invalidated: end the stream.
				writeSSE(c.Writer, "error", map[string]string{"message": err.Error()})
				c.Writer.Flush()
				return
			}
			if v := versionOf(cols); v != last {
				last = v
				writeSSE(c.Writer, "board", cols)
				c.Writer.Flush()
			}
		}
	}
}

// writeSSE writes a single SSE event to the writer.
func writeSSE(w io.Writer, event string, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, string(jsonData))
}
