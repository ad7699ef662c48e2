// Package llm is the gateway to generative AI vendors. Each vendor implements
// Provider and is registered with static pricing metadata; the Gateway resolves
// a credential per call, enforces usage ceilings, and records every attempt.
package llm
