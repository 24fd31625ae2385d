// Package http implements the JSON API of the dataset service on chi.
//
// Handlers stay thin: they parse and validate the request, call
// services.DatasetService and render the result with go-chi/render.
// Every failure goes through errors.ErrorHandler and is answered with
// RFC 7807 problem details:
//
//	{
//	    "type": "/errors/dataset/computation",
//	    "title": "Unprocessable Entity",
//	    "status": 422,
//	    "detail": "reward_per_kill undefined: row 0 has zero kills",
//	    "instance": "/api/datasets/6f1c.../transform"
//	}
//
// # Routes
//
//	POST   /api/datasets                        upload a CSV, TSV or XLSX body
//	GET    /api/datasets                        list stored datasets
//	GET    /api/datasets/{id}                   describe
//	DELETE /api/datasets/{id}
//	GET    /api/datasets/{id}/eda
//	GET    /api/datasets/{id}/kills-by-region
//	GET    /api/datasets/{id}/avg-reward-by-region
//	GET    /api/datasets/{id}/most-dangerous
//	GET    /api/datasets/{id}/class-distribution?column=
//	POST   /api/datasets/{id}/transform         {"steps":[{"id":..., "params":{...}}]}
//	GET    /api/datasets/{id}/export?format=csv|xlsx
//	GET    /healthz
//	GET    /metrics
//
// Transforms never modify the source dataset; the result is stored under
// a new id and the response carries the pipeline run state.
package http
