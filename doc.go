// Package reql is a client driver for ReQL document databases.
//
// A Connection multiplexes any number of concurrent queries over one TCP
// connection, correlating responses by token. Results come back as a typed
// single value, a write acknowledgement, or a streaming cursor:
//
//	conn, err := reql.Connect(ctx, reql.Config{
//		Endpoints: []string{"db.internal:28015"},
//		Database:  "app",
//	})
//	if err != nil {
//		return err
//	}
//	defer conn.Close()
//
//	count, err := reql.Run[float64](ctx, conn, reql.DB("app").Table("users").Count())
//
//	res, err := conn.RunWrite(ctx, reql.DB("app").Table("users").Insert(newUser))
//
//	cur := reql.RunCursor[User](conn, reql.DB("app").Table("users"))
//	for cur.Next(ctx) {
//		process(cur.Current())
//	}
//	err = cur.Err()
package reql
