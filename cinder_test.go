// End-to-end source-to-stdout scenarios, one file at the module root in
// the teacher's test/integration_test.go tradition, exercising the full
// compile-then-run pipeline the way a script author actually invokes it.
package cinder_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinderlang/cinder/internal/heap"
	"github.com/cinderlang/cinder/internal/vm"
)

func TestEndToEndPrograms(t *testing.T) {
	cases := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "fibonacci",
			source: `fun fib(n) { if (n < 2) return n; return fib(n - 1) + fib(n - 2); } print fib(10);`,
			want:   "55\n",
		},
		{
			name: "classes with inheritance and super",
			source: `
				class Shape {
					area() { return 0; }
				}
				class Square < Shape {
					init(side) { this.side = side; }
					area() { return this.side * this.side; }
				}
				var s = Square(4);
				print "area=";
				print s.area();
			`,
			want: "area=\n16\n",
		},
		{
			name: "closures capture enclosing parameters",
			source: `
				var makers = "";
				fun makeAdder(x) {
					fun adder(y) { return x + y; }
					return adder;
				}
				var add5 = makeAdder(5);
				print add5(10);
				print add5(20);
			`,
			want: "15\n25\n",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			h := heap.New(heap.DefaultConfig())
			v := vm.New(h)
			v.Stdout = &out

			err := v.Interpret(tc.source)
			require.NoError(t, err)
			assert.Equal(t, tc.want, out.String())
		})
	}
}

func TestEndToEndLogicalOperators(t *testing.T) {
	var out bytes.Buffer
	h := heap.New(heap.DefaultConfig())
	v := vm.New(h)
	v.Stdout = &out

	err := v.Interpret(`print "cinder" == "cinder" and true or false;`)
	require.NoError(t, err)
	assert.Equal(t, "true\n", out.String())
}

func TestEndToEndGarbageCollectionUnderStress(t *testing.T) {
	cfg := heap.DefaultConfig()
	cfg.StressGC = true
	h := heap.New(cfg)
	v := vm.New(h)
	var out bytes.Buffer
	v.Stdout = &out

	err := v.Interpret(`
		class Node {
			init(value) {
				this.value = value;
			}
		}
		var total = 0;
		for (var i = 0; i < 200; i = i + 1) {
			var n = Node(i);
			total = total + n.value;
		}
		print total;
	`)
	require.NoError(t, err)
	assert.Equal(t, "19900\n", out.String())
}
