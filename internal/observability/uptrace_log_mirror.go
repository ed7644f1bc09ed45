package observability

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	otellog "go.opentelemetry.io/otel/log"
	otelglobal "go.opentelemetry.io/otel/log/global"
	"go.uber.org/zap/zapcore"

	"github.com/riskibarqy/matchfeed/internal/platform/logging"
)

const (
	uptraceLogInstrumentation = "github.com/riskibarqy/matchfeed/internal/platform/logging"
	maxLogValueDepth          = 3
	maxLogStringBytes         = 4096
	redacted                  = "[redacted]"
)

// Probe and scrape traffic would drown the ingestion logs.
var quietPaths = map[string]struct{}{
	"/healthz": {},
	"/metrics": {},
}

// Keys whose values never leave the process, whatever the caller logged.
var secretKeyMarkers = []string{"token", "secret", "password", "authorization"}

func newUptraceLogMirror(serviceVersion string) logging.MirrorFunc {
	otelLogger := otelglobal.Logger(
		uptraceLogInstrumentation,
		otellog.WithInstrumentationVersion(serviceVersion),
	)

	return func(ctx context.Context, level logging.Level, msg string, args ...any) {
		if shouldSkipUptraceLog(msg, args) {
			return
		}
		if ctx == nil {
			ctx = context.Background()
		}

		severity := toOTelSeverity(level)
		if !otelLogger.Enabled(ctx, otellog.EnabledParameters{Severity: severity, EventName: msg}) {
			return
		}

		now := time.Now().UTC()
		var record otellog.Record
		record.SetTimestamp(now)
		record.SetObservedTimestamp(now)
		record.SetSeverity(severity)
		record.SetSeverityText(strings.ToUpper(level.String()))
		record.SetEventName(msg)
		record.SetBody(otellog.StringValue(msg))
		if attrs := buildOTelLogAttributes(args); len(attrs) > 0 {
			record.AddAttributes(attrs...)
		}
		otelLogger.Emit(ctx, record)
	}
}

func shouldSkipUptraceLog(msg string, args []any) bool {
	if msg != "http request" {
		return false
	}
	for i := 0; i+1 < len(args); i += 2 {
		if key, _ := args[i].(string); key != "path" {
			continue
		}
		path, _ := args[i+1].(string)
		_, quiet := quietPaths[path]
		return quiet
	}
	return false
}

// buildOTelLogAttributes pairs up key/value args the way the zap core does;
// a dangling key becomes an empty attribute.
func buildOTelLogAttributes(args []any) []otellog.KeyValue {
	if len(args) == 0 {
		return nil
	}

	attrs := make([]otellog.KeyValue, 0, (len(args)+1)/2)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok || strings.TrimSpace(key) == "" {
			key = fmt.Sprintf("arg_%d", i/2)
		}
		switch {
		case i+1 >= len(args):
			attrs = append(attrs, otellog.Empty(key))
		case isSecretKey(key):
			attrs = append(attrs, otellog.String(key, redacted))
		default:
			attrs = append(attrs, otellog.KeyValue{Key: key, Value: toOTelLogValue(args[i+1], 0)})
		}
	}
	return attrs
}

func isSecretKey(key string) bool {
	key = strings.ToLower(key)
	for _, marker := range secretKeyMarkers {
		if strings.Contains(key, marker) {
			return true
		}
	}
	return false
}

func toOTelSeverity(level zapcore.Level) otellog.Severity {
	switch {
	case level <= zapcore.DebugLevel:
		return otellog.SeverityDebug
	case level == zapcore.InfoLevel:
		return otellog.SeverityInfo
	case level == zapcore.WarnLevel:
		return otellog.SeverityWarn
	case level >= zapcore.DPanicLevel:
		return otellog.SeverityFatal
	default:
		return otellog.SeverityError
	}
}

func toOTelLogValue(value any, depth int) otellog.Value {
	switch v := value.(type) {
	case nil:
		return otellog.Value{}
	case string:
		return otellog.StringValue(truncate(v))
	case bool:
		return otellog.BoolValue(v)
	case []byte:
		return otellog.StringValue(truncate(string(v)))
	case time.Time:
		return otellog.StringValue(v.UTC().Format(time.RFC3339Nano))
	case time.Duration:
		return otellog.StringValue(v.String())
	case error:
		return otellog.StringValue(truncate(v.Error()))
	case fmt.Stringer:
		return otellog.StringValue(truncate(v.String()))
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return otellog.Int64Value(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if u := rv.Uint(); u <= 1<<63-1 {
			return otellog.Int64Value(int64(u))
		}
		return otellog.StringValue(fmt.Sprint(value))
	case reflect.Float32, reflect.Float64:
		return otellog.Float64Value(rv.Float())
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return otellog.Value{}
		}
		return toOTelLogValue(rv.Elem().Interface(), depth)
	}

	if depth >= maxLogValueDepth {
		return jsonLogValue(value)
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]otellog.Value, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			items = append(items, toOTelLogValue(rv.Index(i).Interface(), depth+1))
		}
		return otellog.SliceValue(items...)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return jsonLogValue(value)
		}
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		kvs := make([]otellog.KeyValue, 0, len(keys))
		for _, key := range keys {
			kvs = append(kvs, otellog.KeyValue{
				Key:   key.String(),
				Value: toOTelLogValue(rv.MapIndex(key).Interface(), depth+1),
			})
		}
		return otellog.MapValue(kvs...)
	default:
		return jsonLogValue(value)
	}
}

// Domain structs (cycle results, match summaries) are shipped as their JSON
// encoding rather than walked field by field.
func jsonLogValue(value any) otellog.Value {
	raw, err := sonic.MarshalString(value)
	if err != nil {
		return otellog.StringValue(truncate(fmt.Sprint(value)))
	}
	return otellog.StringValue(truncate(raw))
}

func truncate(s string) string {
	if len(s) <= maxLogStringBytes {
		return s
	}
	return s[:maxLogStringBytes] + "..."
}
