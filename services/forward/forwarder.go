package forward

import (
	"context"
	"fmt"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/wrdo/mailrouter/config"
	"github.com/wrdo/mailrouter/dto"
	mailrouter_errors "github.com/wrdo/mailrouter/errors"
	"github.com/wrdo/mailrouter/interfaces"
	"github.com/wrdo/mailrouter/internal/logger"
	"github.com/wrdo/mailrouter/internal/tracing"
	"github.com/wrdo/mailrouter/internal/utils"
)

const (
	forwardingLocalPart = "Forwarding"
	defaultSubject      = "No subject"
)

// Forwarder relays inbound mail to external addresses through the outbound provider, sending
// as Forwarding@ the first email-enabled domain.
type Forwarder struct {
	log     logger.Logger
	domains interfaces.DomainRepository
	sender  interfaces.OutboundSender
	brand   *config.BrandConfig
}

func NewForwarder(log logger.Logger, domains interfaces.DomainRepository, sender interfaces.OutboundSender, brand *config.BrandConfig) *Forwarder {
	return &Forwarder{
		log:     log,
		domains: domains,
		sender:  sender,
		brand:   brand,
	}
}

func (f *Forwarder) Forward(ctx context.Context, email *dto.InboundEmail, cfg dto.ForwardConfig) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Forwarder.Forward")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.LogKV("to", email.To)

	targets := utils.ParseAndValidateEmails(f.log, cfg.Targets)
	if len(targets) == 0 {
		tracing.TraceErr(span, mailrouter_errors.ErrNoForwardTargets)
		return mailrouter_errors.ErrNoForwardTargets
	}

	domains, err := f.domains.GetEmailSendingDomains(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "load sending domains")
	}
	if len(domains) == 0 {
		tracing.TraceErr(span, mailrouter_errors.ErrNoSendingDomain)
		return mailrouter_errors.ErrNoSendingDomain
	}

	outbound := &dto.OutboundEmail{
		From:    forwardingLocalPart + "@" + domains[0].DomainName,
		To:      targets,
		Subject: utils.FirstNonEmpty(email.Subject, defaultSubject),
		HTML:    f.forwardedBody(email),
	}

	if err := f.sender.Send(ctx, outbound); err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrapf(err, "forward via %s", f.sender.Name())
	}

	f.log.Info("Email forwarded",
		zap.String("to", email.To),
		zap.Strings("targets", targets),
		zap.String("provider", f.sender.Name()))
	return nil
}

func (f *Forwarder) forwardedBody(email *dto.InboundEmail) string {
	body := utils.FirstNonEmpty(email.HTML, email.Text)
	return body + fmt.Sprintf(
		` <br><hr><p style="font-size: '12px'; color: '#888'; font-family: 'monospace';text-align: 'center'">This email was forwarded from %s. Powered by <a href="%s">%s</a>.</p>`,
		email.To, f.brand.URL, f.brand.Name)
}
