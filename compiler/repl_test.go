package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepl_Probe(t *testing.T) {
	testData := []struct {
		src      string
		xmlMode  bool
		complete bool
		hasErr   bool
	}{
		{src: "class A {", complete: false},
		{src: "class A {\n function void f() {\n return;", complete: false},
		{src: "class A { /* still typing", complete: false},
		{src: "class A { function void f() { return; } }", complete: true},
		{src: "class A { function void f() { return; } }", xmlMode: true, complete: true},
		{src: "class A { let }", hasErr: true},
		{src: "class A { # }", hasErr: true},
	}
	for _, data := range testData {
		output, complete, err := probe(data.src, data.xmlMode)
		assert.Equal(t, data.complete, complete, data.src)
		assert.Equal(t, data.hasErr, err != nil, data.src)
		if complete {
			assert.NotEmpty(t, output)
		}
	}
	output, _, _ := probe("class A { function void f() { return; } }", false)
	assert.Equal(t, "function A.f 0\npush constant 0\nreturn\n", output)
}
