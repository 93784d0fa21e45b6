package authcore

import "context"

type contextKey int

const (
	clientIPKey contextKey = iota
	userAgentKey
)

// WithClientIP stamps the caller's IP on the context. The engine copies it
// onto new session rows when the Device argument leaves IP empty.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// WithUserAgent stamps the caller's user agent on the context.
func WithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, userAgentKey, ua)
}

// ClientIP returns the IP stamped by WithClientIP, if any.
func ClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey).(string)
	return ip
}

// UserAgent returns the user agent stamped by WithUserAgent, if any.
func UserAgent(ctx context.Context) string {
	ua, _ := ctx.Value(userAgentKey).(string)
	return ua
}

func enrichDevice(ctx context.Context, device Device) Device {
	if device.IP == "" {
		device.IP = ClientIP(ctx)
	}
	if device.UserAgent == "" {
		device.UserAgent = UserAgent(ctx)
	}
	return device
}
