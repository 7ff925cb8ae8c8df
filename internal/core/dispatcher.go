package core

import (
	"go.uber.org/zap"
)

// Dispatcher pairs a routing decision with the variants the backend actually
// returned and emits the send jobs. A wanted-but-missing variant is skipped
// silently: the backend is authoritative on availability.
type Dispatcher struct {
	businessName string
	personalName string
	logger       *zap.Logger
}

// NewDispatcher creates a dispatcher. The display names are attached to the
// outgoing replies ("Notariusz – Informacja" / "Tyler Durden – Autoresponder"
// in the deployed configuration).
func NewDispatcher(businessName, personalName string, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		businessName: businessName,
		personalName: personalName,
		logger:       logger,
	}
}

// Dispatch emits zero, one or two send jobs. When both variants go out the
// business variant is always first, so ordering is deterministic.
func (d *Dispatcher) Dispatch(msg *InboundMessage, decision RoutingDecision, resp *BackendResponse) []SendJob {
	if resp == nil {
		return nil
	}

	var jobs []SendJob
	if decision.WantsBusiness {
		if resp.Business != nil {
			jobs = append(jobs, d.job(msg, resp.Business, d.businessName))
		} else {
			d.logger.Debug("Business reply wanted but not available",
				zap.String("sender", msg.Sender))
		}
	}
	if decision.WantsPersonal {
		if resp.Personal != nil {
			jobs = append(jobs, d.job(msg, resp.Personal, d.personalName))
		} else {
			d.logger.Debug("Personal reply wanted but not available",
				zap.String("sender", msg.Sender))
		}
	}
	return jobs
}

func (d *Dispatcher) job(msg *InboundMessage, variant *ReplyVariant, name string) SendJob {
	return SendJob{
		Variant:     variant,
		Recipient:   msg.Sender,
		Subject:     msg.Subject,
		DisplayName: name,
		Thread:      msg.Thread,
	}
}
