package signal

import "github.com/dkeye/Composite/internal/app/orch"

func (ctl *StateWSController) handlePing(c *WsStateConn) {
	resp := struct {
		Type string `json:"type"`
	}{
		Type: "pong",
	}
	ctl.sendJSON(c, resp)
}

func (ctl *StateWSController) handleWhoAmI(comp *orch.Composite, c *WsStateConn) {
	st := comp.Store().State()
	resp := struct {
		Type        string `json:"type"`
		Composite   string `json:"composite"`
		DisplayName string `json:"display_name"`
		Screen      string `json:"screen"`
	}{
		Type:        "whoami",
		Composite:   comp.ID().String(),
		DisplayName: st.LocalUserState.DisplayName,
		Screen:      string(st.NavigationState.Status),
	}
	ctl.sendJSON(c, resp)
}

func (ctl *StateWSController) sendError(c *WsStateConn, msg string) {
	ctl.sendJSON(c, map[string]any{
		"type":  "error",
		"error": msg,
	})
}
