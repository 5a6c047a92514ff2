//go:build js && wasm

package main

import (
	"os"
	"path/filepath"
	"syscall/js"

	"github.com/isomesh/isomesh/api"
)

// stageSlices writes a JS object mapping filename -> Uint8Array into a
// fresh temp directory, so api.ExtractOBJ/ExtractGLB (which read a slice
// directory the same way the CLI does) can run unchanged in a wasm host.
func stageSlices(filesObj js.Value) (string, error) {
	dir, err := os.MkdirTemp("", "isomesh-slices-*")
	if err != nil {
		return "", err
	}
	keys := js.Global().Get("Object").Call("keys", filesObj)
	for i := 0; i < keys.Length(); i++ {
		name := keys.Index(i).String()
		v := filesObj.Get(name)
		b := make([]byte, v.Get("length").Int())
		js.CopyBytesToGo(b, v)
		if err := os.WriteFile(filepath.Join(dir, name), b, 0o644); err != nil {
			os.RemoveAll(dir)
			return "", err
		}
	}
	return dir, nil
}

func toUint8Array(b []byte) js.Value {
	arr := js.Global().Get("Uint8Array").New(len(b))
	js.CopyBytesToJS(arr, b)
	return arr
}

func parseOptions(args []js.Value) api.ExtractOptions {
	opts := api.ExtractOptions{Isovalue: 0.5, Parallel: true}
	if len(args) > 1 && args[1].Type() == js.TypeNumber {
		opts.Isovalue = args[1].Float()
	}
	if len(args) > 2 && args[2].Type() == js.TypeNumber {
		opts.SimplifyRatio = args[2].Float()
	}
	return opts
}

func extractOBJ(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing slice files object")
	}
	dir, err := stageSlices(args[0])
	if err != nil {
		return js.ValueOf(err.Error())
	}
	defer os.RemoveAll(dir)

	out, err := api.ExtractOBJ(dir, parseOptions(args))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return toUint8Array(out)
}

func extractGLB(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing slice files object")
	}
	dir, err := stageSlices(args[0])
	if err != nil {
		return js.ValueOf(err.Error())
	}
	defer os.RemoveAll(dir)

	out, err := api.ExtractGLB(dir, parseOptions(args))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return toUint8Array(out)
}

func main() {
	js.Global().Set("isomeshExtractOBJ", js.FuncOf(extractOBJ))
	js.Global().Set("isomeshExtractGLB", js.FuncOf(extractGLB))
	select {}
}
