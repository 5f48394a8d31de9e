// Package llm provides the chat-completion client that turns scraped workout
// material and user preferences into a personalized plan.
//
// # Prompt
//
// BuildMaterials labels each source, truncates it to 1000 characters, and the
// combined materials are trimmed to the configured token budget before being
// sent alongside the preference lines (sorted by key). The model is asked for a
// JSON object with "plan" and "summary" fields.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.GenerateWorkoutPlan: build prompts, call the API, parse the reply.
// Client.HealthCheck: verify API key and model availability.
// ParsePlanReply: turn raw model text into a PlanResult, with a text fallback.
//
// # Retry Behaviour
//
// HTTP 429 and 5xx responses are retried with exponential backoff (1s, then
// 2s) for up to two retries. Every other failure is returned immediately.
// Context cancellation aborts retries.
package llm
