/*
Package secmem derives the description of a single-error-correcting memory
macro from a handful of sizing parameters.

Given a word count, a word width, a column multiplexing factor and fault
injection masks, it computes:

  - the Hamming SEC codeword layout, encoder and decoder (ECCPlan),
  - the split of a linear address into row and column selectors and the
    corresponding one-hot decoders (AddressMap),
  - the interleaving of codeword bits onto the physical columns of a row
    (Interleave),
  - the write-failure and read-disturb fault models (FaultMask).

A Design bundles all of the above. The hwlib package builds a cycle-accurate
circuit from a Design, and the rtl package emits it as Verilog sources.

	d, err := secmem.NewDesign(secmem.DefaultParams())
	if err != nil {
		log.Fatal(err)
	}
	cw := d.ECC.Encode(secmem.BitsOf(0xA, d.WordWidth))
	data, flagged := d.ECC.Decode(cw)

*/
package secmem
