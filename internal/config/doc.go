// Package config loads runtime configuration from the environment.
//
// A .env file in the working directory is honored for local development.
// Three settings are required (the OpenAI API key, the Cal.com API key and
// the Cal.com event type id); everything else has a sensible default.
package config
