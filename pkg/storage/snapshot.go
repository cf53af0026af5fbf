package storage

import (
	"math"
	"os"
	"reflect"
)

// dirStamp is a cheap, comparable signature of a directory entry used to
// detect "something changed since last look" without enumerating contents.
// Any add, remove or rename inside the directory moves its mtime (and on
// most platforms ctime), producing an unequal stamp; where the platform
// exposes them, change time and device/inode sharpen the signature. The
// stamp is only as sensitive as the filesystem's timestamp resolution, so
// spurious equality within one tick is possible and callers that need a
// deterministic change must advance the timestamp themselves.
type dirStamp struct {
	ModTimeNano    int64
	Size           int64
	HasChangeTime  bool
	ChangeTimeNano int64
	HasFileID      bool
	Device         uint64
	Inode          uint64
}

// stampDir captures the current signature of the directory at path.
func stampDir(path string) (dirStamp, error) {
	info, err := os.Stat(path)
	if err != nil {
		return dirStamp{}, err
	}
	return stampFromFileInfo(info), nil
}

func stampFromFileInfo(info os.FileInfo) dirStamp {
	stamp := dirStamp{
		ModTimeNano: info.ModTime().UnixNano(),
		Size:        info.Size(),
	}

	if nano, ok := changeTimeUnixNano(info); ok {
		stamp.HasChangeTime = true
		stamp.ChangeTimeNano = nano
	}

	if dev, ino, ok := deviceAndInode(info); ok {
		stamp.HasFileID = true
		stamp.Device = dev
		stamp.Inode = ino
	}

	return stamp
}

// The platform Stat_t layout differs per OS; the helpers below pull the
// extra fields out by name via reflection and degrade to "absent" where a
// platform does not provide them.

func deviceAndInode(info os.FileInfo) (uint64, uint64, bool) {
	statValue, ok := statStruct(info)
	if !ok {
		return 0, 0, false
	}

	dev, ok := uintFieldByNames(statValue, "Dev")
	if !ok {
		return 0, 0, false
	}
	ino, ok := uintFieldByNames(statValue, "Ino")
	if !ok {
		return 0, 0, false
	}
	return dev, ino, true
}

func changeTimeUnixNano(info os.FileInfo) (int64, bool) {
	statValue, ok := statStruct(info)
	if !ok {
		return 0, false
	}

	for _, name := range []string{"Ctim", "Ctimespec"} {
		if tsField := statValue.FieldByName(name); tsField.IsValid() {
			if nano, ok := timespecUnixNano(tsField); ok {
				return nano, true
			}
		}
	}

	sec, hasSec := intFieldByNames(statValue, "Ctime")
	nsec, hasNsec := intFieldByNames(statValue, "CtimeNsec", "Ctimensec")
	if hasSec && hasNsec {
		return sec*1_000_000_000 + nsec, true
	}

	return 0, false
}

func timespecUnixNano(v reflect.Value) (int64, bool) {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return 0, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return 0, false
	}

	sec, hasSec := intFieldByNames(v, "Sec", "Tv_sec")
	nsec, hasNsec := intFieldByNames(v, "Nsec", "Tv_nsec")
	if !hasSec || !hasNsec {
		return 0, false
	}
	return sec*1_000_000_000 + nsec, true
}

func statStruct(info os.FileInfo) (reflect.Value, bool) {
	sys := info.Sys()
	if sys == nil {
		return reflect.Value{}, false
	}

	v := reflect.ValueOf(sys)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	return v, true
}

func uintFieldByNames(v reflect.Value, names ...string) (uint64, bool) {
	for _, name := range names {
		f := v.FieldByName(name)
		if !f.IsValid() {
			continue
		}
		if u, ok := uint64Value(f); ok {
			return u, true
		}
	}
	return 0, false
}

func intFieldByNames(v reflect.Value, names ...string) (int64, bool) {
	for _, name := range names {
		f := v.FieldByName(name)
		if !f.IsValid() {
			continue
		}
		if i, ok := int64Value(f); ok {
			return i, true
		}
	}
	return 0, false
}

func uint64Value(v reflect.Value) (uint64, bool) {
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i := v.Int()
		if i < 0 {
			return 0, false
		}
		return uint64(i), true
	default:
		return 0, false
	}
}

func int64Value(v reflect.Value) (int64, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := v.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	default:
		return 0, false
	}
}
