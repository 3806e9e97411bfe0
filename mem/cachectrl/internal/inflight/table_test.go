package inflight_test

import (
	"github.com/sarchlab/streampf/mem/cachectrl/internal/inflight"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Table", func() {
	var (
		table inflight.Table
	)

	BeforeEach(func() {
		table = inflight.NewTable(2)
	})

	It("should add and find entries", func() {
		_, err := table.AddEntry(0x40, true)
		Expect(err).NotTo(HaveOccurred())

		entry, found := table.Lookup(0x40)
		Expect(found).To(BeTrue())
		Expect(entry.IsPrefetch).To(BeTrue())
		Expect(entry.NumDemands).To(Equal(0))

		_, found = table.Lookup(0x80)
		Expect(found).To(BeFalse())
	})

	It("should count the demand that starts the fetch", func() {
		entry, err := table.AddEntry(0x40, false)

		Expect(err).NotTo(HaveOccurred())
		Expect(entry.NumDemands).To(Equal(1))
	})

	It("should allow updating entries in place", func() {
		entry, _ := table.AddEntry(0x40, true)
		entry.NumDemands++

		found, _ := table.Lookup(0x40)
		Expect(found.NumDemands).To(Equal(1))
	})

	It("should not add the same address twice", func() {
		_, err := table.AddEntry(0x40, false)
		Expect(err).NotTo(HaveOccurred())

		_, err = table.AddEntry(0x40, false)
		Expect(err).To(HaveOccurred())
	})

	It("should not add to a full table", func() {
		table.AddEntry(0x40, false)
		table.AddEntry(0x80, false)

		Expect(table.IsFull()).To(BeTrue())
		_, err := table.AddEntry(0xc0, false)
		Expect(err).To(HaveOccurred())
	})

	It("should remove entries", func() {
		table.AddEntry(0x40, true)
		table.AddEntry(0x80, false)

		entry, err := table.RemoveEntry(0x40)

		Expect(err).NotTo(HaveOccurred())
		Expect(entry.Address).To(Equal(uint64(0x40)))
		Expect(table.Len()).To(Equal(1))
		_, found := table.Lookup(0x40)
		Expect(found).To(BeFalse())
	})

	It("should hand back a copy of the removed entry", func() {
		entry, _ := table.AddEntry(0x80, false)
		entry.NumDemands++

		removed, err := table.RemoveEntry(0x80)

		Expect(err).NotTo(HaveOccurred())
		Expect(removed).To(Equal(inflight.Entry{
			Address:    0x80,
			IsPrefetch: false,
			NumDemands: 2,
		}))
	})

	It("should report removing a missing entry", func() {
		_, err := table.RemoveEntry(0x40)

		Expect(err).To(HaveOccurred())
	})

	It("should reset", func() {
		table.AddEntry(0x40, true)

		table.Reset()

		Expect(table.Len()).To(Equal(0))
	})
})
