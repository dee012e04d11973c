// Package sqsout provides a batching output engine for Amazon SQS that
// can be embedded in other applications.
//
// Callers submit pre-serialized records; the engine accumulates them
// and flushes each batch as one composite SQS message when the batch
// reaches the configured record count, when its byte total crosses the
// configured limit, or when the batch timeout elapses. Delivery is
// best-effort and at-most-once: a batch whose send fails is logged and
// dropped.
//
// Example usage:
//
//	cfg := sqsout.DefaultConfig()
//	cfg.QueueURL = "https://sqs.us-east-1.amazonaws.com/123456789/events"
//	out, err := sqsout.New(cfg, sqsout.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	if err := out.Start(ctx); err != nil {
//	    return err
//	}
//	defer out.Close()
//	out.Submit(`{"msg":"hello"}`)
package sqsout
