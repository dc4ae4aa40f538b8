package provider

import "strings"

const providerComponentName = "provider"

func (p *Provider) logInfo(operation, message string, attrs ...any) {
	base := []any{
		"component", providerComponentName,
		"operation", strings.TrimSpace(operation),
	}
	p.logger.Info(message, append(base, attrs...)...)
}

func (p *Provider) logDebug(operation, message string, attrs ...any) {
	base := []any{
		"component", providerComponentName,
		"operation", strings.TrimSpace(operation),
	}
	p.logger.Debug(message, append(base, attrs...)...)
}

func (p *Provider) logWarn(operation, message string, attrs ...any) {
	base := []any{
		"component", providerComponentName,
		"operation", strings.TrimSpace(operation),
	}
	p.logger.Warn(message, append(base, attrs...)...)
}
