//go:build android

package permission

import (
	"log/slog"

	"git.wow.st/gmp/jni"
)

// PackageManager.PERMISSION_GRANTED
const permissionGranted = 0

// AndroidRequester reads the grant state from the platform. It cannot show
// the system prompt, which needs a Java fragment; Request reports what the
// user has granted in the system settings.
type AndroidRequester struct {
	vm     jni.JVM
	appCtx jni.Object
	logger *slog.Logger
}

// NewAndroidRequester takes the handles from gioui.org/app.JavaVM and
// gioui.org/app.AppContext.
func NewAndroidRequester(vm, appCtx uintptr, logger *slog.Logger) *AndroidRequester {
	if logger == nil {
		logger = slog.Default()
	}
	return &AndroidRequester{vm: jni.JVMFor(vm), appCtx: jni.Object(appCtx), logger: logger}
}

func (r *AndroidRequester) Granted(p Permission) bool {
	var granted bool
	err := jni.Do(r.vm, func(env jni.Env) error {
		cls := jni.GetObjectClass(env, r.appCtx)
		check := jni.GetMethodID(env, cls, "checkSelfPermission", "(Ljava/lang/String;)I")
		res, err := jni.CallIntMethod(env, r.appCtx, check, jni.Value(jni.JavaString(env, string(p))))
		if err != nil {
			return err
		}
		granted = res == permissionGranted
		return nil
	})
	if err != nil {
		r.logger.Warn("permission check failed", "permission", p, "error", err)
		return false
	}
	return granted
}

func (r *AndroidRequester) Request(ps []Permission, done func([]Result)) {
	results := make([]Result, 0, len(ps))
	for _, p := range ps {
		results = append(results, Result{Permission: p, Granted: r.Granted(p)})
	}
	go done(results)
}
