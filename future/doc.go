// Package future provides Future, the handle to an asynchronous connect,
// accept or pipe operation.
//
//	f, err := p.CreatePipeConnection(nil, left, right)
//	if err != nil {
//	    return err
//	}
//	conn, err := f.Await(ctx)
//
// States are waiting, done, failed and cancelled. Cancellation is a request;
// once granted the Future never reports a value.
package future
