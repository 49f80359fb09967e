// Package acl adapts the language model providers to ports.Generator.
//
// Provider payloads stay inside this package. Every failure leaving it is a
// domain error:
//
//   - 429, 402, or a message mentioning credit, quota, or billing becomes
//     [domain.ErrQuotaExhausted]
//   - any other provider status becomes [domain.ErrUpstream]
//   - an open circuit, a timeout, or a transport failure becomes
//     [domain.ErrUnavailable]
//
// Caller cancellation is returned unchanged.
//
// [AnthropicGateway] talks to the Messages API through [clients.Client] and
// parses its server-sent events itself. [GeminiGateway] uses the Gemini SDK
// and guards it with a [clients.CircuitBreaker].
package acl
