package page

import (
	"github.com/de-tools/route-trends/pkg/adapters"
	"github.com/de-tools/route-trends/pkg/models/api"
	"github.com/de-tools/route-trends/pkg/services/session"
	"github.com/de-tools/route-trends/pkg/views/insights"
)

func MapViewToAPIState(v session.View) api.SessionState {
	state := api.SessionState{
		Phase: string(v.Phase),
		Form:  adapters.MapDomainQueryToAPIRequest(v.Form),
		Trigger: api.Trigger{
			Label:    v.Trigger.Label,
			Disabled: v.Trigger.Disabled,
		},
		Insights: mapPanel(v.Insights),
	}
	if len(v.Dataset) > 0 {
		state.Data = adapters.MapDomainDataPointsToAPI(v.Dataset)
	}
	return state
}

func mapPanel(p *insights.Panel) *api.Panel {
	if p == nil {
		return nil
	}
	out := &api.Panel{Title: p.Title, Error: p.Error}
	for _, l := range p.Lines {
		out.Lines = append(out.Lines, api.PanelLine{Label: l.Label, Value: l.Value})
	}
	return out
}
