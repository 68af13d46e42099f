package trace

import (
	"io"
	"sync"

	"github.com/tidwall/sjson"

	"github.com/dshills/lavapanel/internal/bind"
	"github.com/dshills/lavapanel/internal/dispatcher"
	"github.com/dshills/lavapanel/internal/logging"
)

// Reporter writes one JSON line per interaction:
//
//	{"seat":1,"item":0,"type":"mouse-button","modifiers":"","button":"mouse-left","resolved":true,"action":"none","command":"foot","output":"DP-1"}
//
// Scroll interactions carry "direction" instead of "button".
type Reporter struct {
	mu     sync.Mutex
	w      io.Writer
	count  int
	logger *logging.Logger
}

// NewReporter writes reports to w.
func NewReporter(w io.Writer, logger *logging.Logger) *Reporter {
	return &Reporter{
		w:      w,
		logger: logging.OrNull(logger).WithComponent("trace"),
	}
}

// Observer returns r.Observe as a dispatcher observer.
func (r *Reporter) Observer() dispatcher.Observer {
	return r.Observe
}

// Observe records one interaction.
func (r *Reporter) Observe(in dispatcher.Interaction, b bind.Binding, resolved bool) {
	line, err := Encode(in, b, resolved)
	if err != nil {
		r.logger.Error("encoding interaction: %v", err)
		return
	}
	line = append(line, '\n')

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.w.Write(line); err != nil {
		r.logger.Error("writing report: %v", err)
		return
	}
	r.count++
}

// Count returns the number of interactions written.
func (r *Reporter) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Encode formats one interaction as a JSON object.
func Encode(in dispatcher.Interaction, b bind.Binding, resolved bool) ([]byte, error) {
	type field struct {
		path  string
		value any
	}
	fields := []field{
		{"seat", in.Seat},
		{"item", -1},
		{"type", in.Type.String()},
		{"modifiers", in.Modifiers.String()},
	}
	if in.Item != nil {
		fields[1].value = int(in.Item.ID)
		if in.Item.AppID != "" {
			fields = append(fields, field{"app_id", in.Item.AppID})
		}
	}

	switch in.Type {
	case bind.MouseButton:
		name := bind.ButtonName(in.Special)
		if name == "" {
			fields = append(fields, field{"button", in.Special})
		} else {
			fields = append(fields, field{"button", name})
		}
	case bind.MouseScroll:
		dir := "down"
		if in.Special == bind.ScrollUp {
			dir = "up"
		}
		fields = append(fields, field{"direction", dir})
	}

	fields = append(fields, field{"resolved", resolved})
	if resolved {
		fields = append(fields, field{"action", b.Action.String()})
		if b.HasCommand() {
			fields = append(fields, field{"command", b.Command})
		}
	}
	fields = append(fields, field{"output", in.Output.Name})

	out := []byte("{}")
	var err error
	for _, f := range fields {
		out, err = sjson.SetBytes(out, f.path, f.value)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
