package workload

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/streampf/mem/prefetch"
)

var _ = Describe("TraceReader", func() {
	It("should read accesses", func() {
		r := NewTraceReader(strings.NewReader(`
# pc address type
0x400 0x1000 LD
0x404 4160 st

0x408 0x2000
`))

		Expect(Collect(r)).To(Equal([]Access{
			{PC: 0x400, Address: 0x1000, Type: prefetch.RequestTypeLoad},
			{PC: 0x404, Address: 4160, Type: prefetch.RequestTypeStore},
			{PC: 0x408, Address: 0x2000, Type: prefetch.RequestTypeLoad},
		}))
		Expect(r.Err()).NotTo(HaveOccurred())
	})

	DescribeTable("should stop at malformed lines",
		func(line string) {
			r := NewTraceReader(strings.NewReader("0x400 0x1000\n" + line))

			_, ok := r.Next()
			Expect(ok).To(BeTrue())

			_, ok = r.Next()
			Expect(ok).To(BeFalse())
			Expect(r.Err()).To(MatchError(ContainSubstring("trace line 2")))

			_, ok = r.Next()
			Expect(ok).To(BeFalse())
		},
		Entry("too few fields", "0x400"),
		Entry("too many fields", "0x400 0x1000 LD extra"),
		Entry("bad pc", "pc 0x1000"),
		Entry("bad address", "0x400 addr"),
		Entry("bad type", "0x400 0x1000 JUMP"),
	)
})
