package stdlib

import (
	"time"

	"github.com/aiscriptdev/aiscript/internal/bytecode"
	"github.com/aiscriptdev/aiscript/internal/module"
)

// dateTimeModule builds "std.datetime": a timestamp is a plain number of
// seconds since the Unix epoch (UTC), AIScript having no separate
// integer type and no Delphi-epoch TDateTime convention to carry over.
// One function per operation, arity-checked individually, mirrors the
// deleted internal/builtins datetime_*.go files' shape — rebuilt here
// against bytecode.Value/time.Time instead of go-dws's runtime.Value.
func dateTimeModule() module.NativeLoader {
	return func() (*bytecode.ModuleObject, error) {
		exports := bytecode.NewMap()
		exports.Set("now", nativeFn("std.datetime.now", fnNow))
		exports.Set("encode", nativeFn("std.datetime.encode", fnEncode))
		exports.Set("format", nativeFn("std.datetime.format", fnFormat))
		exports.Set("parse", nativeFn("std.datetime.parse", fnParse))
		exports.Set("add_days", nativeFn("std.datetime.add_days", fnAddDays))
		exports.Set("add_hours", nativeFn("std.datetime.add_hours", fnAddHours))
		exports.Set("add_minutes", nativeFn("std.datetime.add_minutes", fnAddMinutes))
		exports.Set("add_seconds", nativeFn("std.datetime.add_seconds", fnAddSeconds))
		exports.Set("days_between", nativeFn("std.datetime.days_between", fnDaysBetween))
		exports.Set("seconds_between", nativeFn("std.datetime.seconds_between", fnSecondsBetween))
		exports.Set("year", nativeFn("std.datetime.year", fieldFn(func(t time.Time) int { return t.Year() })))
		exports.Set("month", nativeFn("std.datetime.month", fieldFn(func(t time.Time) int { return int(t.Month()) })))
		exports.Set("day", nativeFn("std.datetime.day", fieldFn(func(t time.Time) int { return t.Day() })))
		exports.Set("hour", nativeFn("std.datetime.hour", fieldFn(func(t time.Time) int { return t.Hour() })))
		exports.Set("minute", nativeFn("std.datetime.minute", fieldFn(func(t time.Time) int { return t.Minute() })))
		exports.Set("second", nativeFn("std.datetime.second", fieldFn(func(t time.Time) int { return t.Second() })))
		return &bytecode.ModuleObject{Path: "std.datetime", Exports: exports}, nil
	}
}

// nativeFn wraps a plain Go function into the NativeFunction value shape
// stdlib's module exports need.
func nativeFn(name string, fn func(vm bytecode.NativeVM, args []bytecode.Value) (bytecode.Value, error)) bytecode.Value {
	return bytecode.NativeFunctionValue(&bytecode.NativeFunction{Name: name, Fn: fn})
}

func timeFromSeconds(sec float64) time.Time {
	whole := int64(sec)
	frac := sec - float64(whole)
	return time.Unix(whole, int64(frac*1e9)).UTC()
}

func secondsFromTime(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func fnNow(vm bytecode.NativeVM, args []bytecode.Value) (bytecode.Value, error) {
	return bytecode.NumberValue(secondsFromTime(time.Now().UTC())), nil
}

func fnEncode(vm bytecode.NativeVM, args []bytecode.Value) (bytecode.Value, error) {
	if len(args) < 3 || len(args) > 6 {
		return vm.RaiseError("ArgumentError", "encode expects (year, month, day[, hour, minute, second])"), nil
	}
	parts := [6]int{0, 1, 1, 0, 0, 0}
	for i, a := range args {
		parts[i] = int(a.AsNumber())
	}
	t := time.Date(parts[0], time.Month(parts[1]), parts[2], parts[3], parts[4], parts[5], 0, time.UTC)
	return bytecode.NumberValue(secondsFromTime(t)), nil
}

func fnFormat(vm bytecode.NativeVM, args []bytecode.Value) (bytecode.Value, error) {
	if len(args) != 2 {
		return vm.RaiseError("ArgumentError", "format expects (timestamp, layout)"), nil
	}
	t := timeFromSeconds(args[0].AsNumber())
	return bytecode.StringValue(t.Format(args[1].AsString())), nil
}

func fnParse(vm bytecode.NativeVM, args []bytecode.Value) (bytecode.Value, error) {
	if len(args) != 2 {
		return vm.RaiseError("ArgumentError", "parse expects (text, layout)"), nil
	}
	t, err := time.Parse(args[1].AsString(), args[0].AsString())
	if err != nil {
		return vm.RaiseError("DateTimeError", err.Error()), nil
	}
	return bytecode.NumberValue(secondsFromTime(t)), nil
}

func addUnit(unit time.Duration) func(vm bytecode.NativeVM, args []bytecode.Value) (bytecode.Value, error) {
	return func(vm bytecode.NativeVM, args []bytecode.Value) (bytecode.Value, error) {
		if len(args) != 2 {
			return vm.RaiseError("ArgumentError", "expects (timestamp, amount)"), nil
		}
		t := timeFromSeconds(args[0].AsNumber())
		t = t.Add(time.Duration(args[1].AsNumber()) * unit)
		return bytecode.NumberValue(secondsFromTime(t)), nil
	}
}

var (
	fnAddDays    = addUnit(24 * time.Hour)
	fnAddHours   = addUnit(time.Hour)
	fnAddMinutes = addUnit(time.Minute)
	fnAddSeconds = addUnit(time.Second)
)

func fnDaysBetween(vm bytecode.NativeVM, args []bytecode.Value) (bytecode.Value, error) {
	if len(args) != 2 {
		return vm.RaiseError("ArgumentError", "days_between expects (a, b)"), nil
	}
	a, b := timeFromSeconds(args[0].AsNumber()), timeFromSeconds(args[1].AsNumber())
	return bytecode.NumberValue(b.Sub(a).Hours() / 24), nil
}

func fnSecondsBetween(vm bytecode.NativeVM, args []bytecode.Value) (bytecode.Value, error) {
	if len(args) != 2 {
		return vm.RaiseError("ArgumentError", "seconds_between expects (a, b)"), nil
	}
	a, b := timeFromSeconds(args[0].AsNumber()), timeFromSeconds(args[1].AsNumber())
	return bytecode.NumberValue(b.Sub(a).Seconds()), nil
}

func fieldFn(extract func(time.Time) int) func(vm bytecode.NativeVM, args []bytecode.Value) (bytecode.Value, error) {
	return func(vm bytecode.NativeVM, args []bytecode.Value) (bytecode.Value, error) {
		if len(args) != 1 {
			return vm.RaiseError("ArgumentError", "expects (timestamp)"), nil
		}
		return bytecode.NumberValue(float64(extract(timeFromSeconds(args[0].AsNumber())))), nil
	}
}
