// Package credentials supplies the username and password used to sign in to
// the lecture-capture platform.
//
// Providers are layered with Chain: values from config or the environment
// (Static), the OS keyring (Keyring), and finally an interactive terminal
// prompt (Prompt). The session stage only sees the Provider interface and
// never performs terminal I/O itself.
package credentials
