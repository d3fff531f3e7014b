/*
Package pipeio bridges pipes to the standard io interfaces.

FillFrom and DrainTo are pump loops: FillFrom reads a source directly into
rented pipe buffers, DrainTo hands pipe buffer slices to a sink. Together
they turn a pipe into a buffered, flow-controlled conduit between any
io.Reader and io.Writer:

	p := pipe.New()
	go pipeio.FillFrom(ctx, p.Writer(), conn, 0)
	n, err := pipeio.DrainTo(ctx, p.Reader(), file)

NewReader and NewWriter are per-call adapters for code that expects plain
io.Reader/io.Writer values. They copy at the boundary; the pump loops do
not.

All of pipeio is built on the public Writer and Reader façades, so custom
adapters can do anything this package does.
*/
package pipeio
